package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/biosecret/todo-list/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTopic   = "todo-list/todos"
	connectTimeout = 3 * time.Second
)

// Broker phát thay đổi qua MQTT để mọi instance (và client) cùng nhận được
type Broker struct {
	client mqtt.Client
	topic  string
	hub    *Hub
}

// ParseMQTTURL tách địa chỉ broker và topic từ URL dạng tcp://host:1883/topic
func ParseMQTTURL(rawURL string) (broker, topic string, err error) {
	uri, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	if uri.Host == "" {
		return "", "", fmt.Errorf("missing MQTT host in %q", rawURL)
	}

	topic = strings.TrimPrefix(uri.Path, "/")
	if topic == "" {
		topic = DefaultTopic
	}
	return fmt.Sprintf("tcp://%s", uri.Host), topic, nil
}

// clientOptions bật auto-reconnect; subscription được tạo lại trong OnConnect
// vì clean session làm broker quên subscription cũ sau mỗi lần mất kết nối
func (b *Broker) clientOptions(clientID string, uri *url.URL, broker string) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	if uri.User != nil {
		opts.SetUsername(uri.User.Username())
		password, _ := uri.User.Password()
		opts.SetPassword(password)
	}
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(b.onConnect)
	opts.SetConnectionLostHandler(b.onConnectionLost)
	return opts
}

// ConnectMQTT kết nối tới broker; các message nhận được sẽ đẩy vào hub
func ConnectMQTT(rawURL, clientID string, hub *Hub) (*Broker, error) {
	broker, topic, err := ParseMQTTURL(rawURL)
	if err != nil {
		return nil, err
	}
	uri, _ := url.Parse(rawURL)

	b := &Broker{topic: topic, hub: hub}
	b.client = mqtt.NewClient(b.clientOptions(clientID, uri, broker))
	token := b.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errors.New("timed out connecting to MQTT broker")
	}
	if err := token.Error(); err != nil {
		return nil, err
	}

	log.Info().Str("broker", broker).Str("topic", topic).Msg("Connected to MQTT broker")
	return b, nil
}

func NewBroker(client mqtt.Client, topic string, hub *Hub) *Broker {
	return &Broker{client: client, topic: topic, hub: hub}
}

func (b *Broker) subscribe(client mqtt.Client) error {
	token := client.Subscribe(b.topic, 1, b.handleMessage)
	if !token.WaitTimeout(connectTimeout) {
		return errors.New("timed out subscribing to MQTT topic")
	}
	return token.Error()
}

// onConnect chạy sau lần kết nối đầu và sau mỗi lần reconnect
func (b *Broker) onConnect(client mqtt.Client) {
	if err := b.subscribe(client); err != nil {
		log.Error().Err(err).Str("topic", b.topic).Msg("failed to subscribe to MQTT topic")
		return
	}
	log.Info().Str("topic", b.topic).Msg("Subscribed to MQTT topic")
}

func (b *Broker) onConnectionLost(_ mqtt.Client, err error) {
	log.Warn().Err(err).Str("topic", b.topic).Msg("MQTT connection lost, reconnecting")
}

// Notify publish thay đổi lên topic, lỗi chỉ được ghi log
func (b *Broker) Notify(_ context.Context, change models.Change) {
	payload, err := json.Marshal(change)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode change")
		return
	}

	token := b.client.Publish(b.topic, 1, false, payload)
	go func() {
		if !token.WaitTimeout(connectTimeout) {
			log.Warn().Str("topic", b.topic).Msg("publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			log.Error().Err(err).Str("topic", b.topic).Msg("publish failed")
		}
	}()
}

func (b *Broker) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	log.Debug().Str("topic", msg.Topic()).Bytes("payload", msg.Payload()).Msg("mqtt message")

	var change models.Change
	if err := json.Unmarshal(msg.Payload(), &change); err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("ignoring malformed change")
		return
	}
	b.hub.Broadcast(change)
}

func (b *Broker) Close() {
	b.client.Disconnect(250)
}
