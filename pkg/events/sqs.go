package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alphaseam/donorbox/pkg/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSForwarder 把捐赠生命周期事件转发到运营队列
type SQSForwarder struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSForwarder 创建SQS转发器
// 配置了专用凭证时使用静态凭证，否则回退到默认AWS配置
func NewSQSForwarder(ctx context.Context) (*SQSForwarder, error) {
	var cfg aws.Config
	var err error

	if config.Config.Events.AWSAccessKey != "" && config.Config.Events.AWSSecret != "" {
		cfg, err = awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(config.Config.Events.AWSRegion),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.Config.Events.AWSAccessKey,
				config.Config.Events.AWSSecret,
				"",
			)),
		)
	} else {
		cfg, err = awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(config.Config.Events.AWSRegion),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &SQSForwarder{
		client:   sqs.NewFromConfig(cfg),
		queueURL: config.Config.Events.SQSQueueURL,
	}, nil
}

func (f *SQSForwarder) OnDonationCompleted(event *DonationEvent) error {
	return f.publish("donation/completed", event)
}

func (f *SQSForwarder) OnDonationFailed(event *DonationEvent) error {
	return f.publish("donation/failed", event)
}

func (f *SQSForwarder) OnDonationRefunded(event *DonationEvent) error {
	return f.publish("donation/refunded", event)
}

func (f *SQSForwarder) publish(topic string, event *DonationEvent) error {
	body, err := json.Marshal(struct {
		Topic  string         `json:"topic"`
		Detail *DonationEvent `json:"detail"`
	}{Topic: topic, Detail: event})
	if err != nil {
		return err
	}

	_, err = f.client.SendMessage(context.Background(), &sqs.SendMessageInput{
		QueueUrl:    aws.String(f.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("error sending message to SQS: %w", err)
	}
	return nil
}
