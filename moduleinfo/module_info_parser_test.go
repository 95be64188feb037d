package moduleinfo

import (
	"io/ioutil"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/osintlabs/lookup-api-go/config"
)

var sampleYaml = []byte(`---
modules:
  github:
    fields:
      - label: Username
        key: username
      - label: Profile
        key: profile_url
  domain:
    fields:
      - label: Provider
        key: email_provider
`)

var _ = Describe("ModuleInfo Registry", func() {

	Context("When parsing a well-formed registry file", func() {
		It("should expose the fields of each module in order", func() {
			registry, err := parseRegistry(sampleYaml)
			Expect(err).To(BeNil())

			fields, ok := registry.Fields("github")
			Expect(ok).To(BeTrue())
			Expect(fields).To(HaveLen(2))
			Expect(fields[0]).To(Equal(FieldSpec{Label: "Username", Key: "username"}))
			Expect(fields[1]).To(Equal(FieldSpec{Label: "Profile", Key: "profile_url"}))
		})

		It("should report unknown modules as not found", func() {
			registry, err := parseRegistry(sampleYaml)
			Expect(err).To(BeNil())

			_, ok := registry.Fields("frobnicator")
			Expect(ok).To(BeFalse())
		})
	})

	Context("When parsing fails", func() {
		It("should return an error for invalid yaml", func() {
			_, err := parseRegistry([]byte("modules: [not: valid"))
			Expect(err).ToNot(BeNil())
		})
	})

	Context("When loading from the configured path", func() {
		It("should load definitions from the file", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "modules.yml")
			Expect(ioutil.WriteFile(path, sampleYaml, os.FileMode(0644))).To(BeNil())

			config.GetConfig().Options.Set(config.Keys.ModuleInfoYaml, path)

			registry := Load()
			_, ok := registry.Fields("domain")
			Expect(ok).To(BeTrue())
		})

		It("should degrade to an empty registry when the file is missing", func() {
			config.GetConfig().Options.Set(config.Keys.ModuleInfoYaml, "/nonexistent/modules.yml")

			registry := Load()
			Expect(registry).ToNot(BeNil())

			_, ok := registry.Fields("github")
			Expect(ok).To(BeFalse())
		})
	})
})
