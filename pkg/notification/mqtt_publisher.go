package notification

import (
	"fmt"
	"time"

	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/pkg/errors"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttPublishTimeout = 5 * time.Second

// MQTTPublisher 基于MQTT的事件发布
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher 连接broker
func NewMQTTPublisher(cfg config.MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warnf("MQTT连接断开: %v", err)
	})
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.WithField("broker", cfg.Broker).Info("MQTT已连接")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, errors.New(errors.ErrConnectionFailed, "connect mqtt broker "+cfg.Broker+": timeout")
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrConnectionFailed, "connect mqtt broker "+cfg.Broker, err)
	}
	return &MQTTPublisher{client: client}, nil
}

// Publish 发布消息
func (p *MQTTPublisher) Publish(topic string, qos byte, payload []byte) error {
	token := p.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return errors.New(errors.ErrPublishFailed, fmt.Sprintf("publish %s: timeout", topic))
	}
	if err := token.Error(); err != nil {
		return errors.Wrap(errors.ErrPublishFailed, "publish "+topic, err)
	}
	return nil
}

// Close 断开连接
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
