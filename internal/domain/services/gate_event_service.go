package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gatepulse-http-service/internal/domain/models"
	"gatepulse-http-service/internal/infrastructure/config"
	"gatepulse-http-service/pkg/logger"
)

// CheckinTopic 访客登记事件发布的主题
const CheckinTopic = "gatepulse/visits/checkin"

// InterfaceGateEventService defines the gate event publisher interface
type InterfaceGateEventService interface {
	Connect() error
	PublishVisitCheckedIn(record *models.VisitRecord) error
	Disconnect()
}

// GateEventService 通过MQTT向闸机和大厅显示屏广播登记事件。
// 发布是尽力而为的：连接或发布失败只记录日志，绝不影响登记本身。
type GateEventService struct {
	Config      *config.Config
	Client      mqtt.Client
	publishMu   sync.Mutex
	isConnected bool
}

// CheckinEvent 登记事件的消息体
type CheckinEvent struct {
	VisitID     uint   `json:"visit_id"`
	FullName    string `json:"full_name"`
	EntryLane   string `json:"entry_lane"`
	HealthAlert bool   `json:"health_alert"`
	CheckedInAt string `json:"checked_in_at"`
}

// NewGateEventService 创建一个新的闸机事件服务；未配置broker时返回nil
func NewGateEventService(cfg *config.Config) InterfaceGateEventService {
	if cfg.MQTTBrokerURL == "" {
		return nil
	}

	service := &GateEventService{Config: cfg}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBrokerURL)
	opts.SetClientID(cfg.MQTTClientID)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warning("[MQTT] 连接断开: %v", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("[MQTT] 已连接到 %s", cfg.MQTTBrokerURL)
	})

	service.Client = mqtt.NewClient(opts)
	return service
}

// 1 Connect 连接到MQTT服务器
func (s *GateEventService) Connect() error {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if s.isConnected && s.Client.IsConnected() {
		return nil
	}

	token := s.Client.Connect()
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		return fmt.Errorf("[MQTT] 连接失败: %v", token.Error())
	}

	s.isConnected = true
	return nil
}

// 2 PublishVisitCheckedIn 广播一条登记事件
func (s *GateEventService) PublishVisitCheckedIn(record *models.VisitRecord) error {
	event := CheckinEvent{
		VisitID:     record.ID,
		FullName:    record.FullName,
		EntryLane:   record.EntryLane,
		HealthAlert: record.HealthAnswers.Alert(),
		CheckedInAt: record.CreatedAt.Format(time.RFC3339),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if !s.Client.IsConnected() {
		return fmt.Errorf("[MQTT] 未连接，事件丢弃: visit %d", record.ID)
	}

	token := s.Client.Publish(CheckinTopic, byte(s.Config.MQTTQoS), s.Config.MQTTRetained, payload)
	if !token.WaitTimeout(3*time.Second) || token.Error() != nil {
		return fmt.Errorf("[MQTT] 发布失败: %v", token.Error())
	}
	return nil
}

// 3 Disconnect 断开MQTT连接
func (s *GateEventService) Disconnect() {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
	s.isConnected = false
}
