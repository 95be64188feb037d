package logger

import (
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/osintlabs/lookup-api-go/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// cloudWatchHook ships log entries to a CloudWatch Logs stream.
// PutLogEvents requires the previous call's sequence token, so writes are serialized.
type cloudWatchHook struct {
	svc           *cloudwatchlogs.CloudWatchLogs
	group         string
	stream        string
	sequenceToken *string
	formatter     logrus.Formatter
	mutex         sync.Mutex
}

func newCloudWatchHook(options *viper.Viper, formatter logrus.Formatter) (*cloudWatchHook, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(options.GetString(config.Keys.CwRegion)),
		Credentials: credentials.NewStaticCredentials(
			options.GetString(config.Keys.CwKey),
			options.GetString(config.Keys.CwSecret),
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	hook := &cloudWatchHook{
		svc:       cloudwatchlogs.New(sess),
		group:     options.GetString(config.Keys.CwLogGroup),
		stream:    options.GetString(config.Keys.CwLogStream),
		formatter: formatter,
	}

	if err := hook.ensureStream(); err != nil {
		return nil, err
	}

	return hook, nil
}

func (h *cloudWatchHook) ensureStream() error {
	_, err := h.svc.CreateLogGroup(&cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(h.group),
	})
	if err != nil && !isAlreadyExists(err) {
		return err
	}

	_, err = h.svc.CreateLogStream(&cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(h.group),
		LogStreamName: aws.String(h.stream),
	})
	if err != nil && !isAlreadyExists(err) {
		return err
	}

	return nil
}

func isAlreadyExists(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == cloudwatchlogs.ErrCodeResourceAlreadyExistsException
	}
	return false
}

// Levels implements logrus.Hook
func (h *cloudWatchHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook
func (h *cloudWatchHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	out, err := h.svc.PutLogEvents(&cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(h.group),
		LogStreamName: aws.String(h.stream),
		SequenceToken: h.sequenceToken,
		LogEvents: []*cloudwatchlogs.InputLogEvent{
			{
				Message:   aws.String(string(line)),
				Timestamp: aws.Int64(entry.Time.UnixNano() / int64(time.Millisecond)),
			},
		},
	})
	if err != nil {
		return err
	}

	h.sequenceToken = out.NextSequenceToken
	return nil
}
