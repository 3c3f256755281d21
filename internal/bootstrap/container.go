package bootstrap

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"neuroviz-server/internal/config"
	"neuroviz-server/internal/controller"
	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/handler"
	"neuroviz-server/internal/model"
	"neuroviz-server/internal/pkg/logger"
	"neuroviz-server/internal/repository/contract"
	"neuroviz-server/internal/repository/implementation"
	"neuroviz-server/internal/repository/memory"
	"neuroviz-server/internal/service"
	"neuroviz-server/internal/session"
	"neuroviz-server/internal/stream"
	"neuroviz-server/internal/websocket"
	"neuroviz-server/pkg/events"
	"neuroviz-server/pkg/pairing"
)

const sessionEventsTopic = "session-events"

type Container struct {
	// Controllers
	StateController      controller.IStateController
	SessionController    controller.ISessionController
	PresetController     controller.IPresetController
	ExperimentController controller.IExperimentController
	ResultController     controller.IResultController
	PairingController    controller.IPairingController
	ParameterController  controller.IParameterController

	// Background services (run by main)
	NotifierService service.INotifierService
	WebSocketHub    *websocket.Hub

	SessionManager *session.Manager
	Broker         *stream.Broker
	Pairing        pairing.Payload
	Logger         logger.ILogger
}

// stateSink glues the session manager to the fanout paths: every
// committed state goes to the SSE broker, and a STATE_CHANGED event goes
// onto the internal bus for the console feed.
type stateSink struct {
	broker    *stream.Broker
	publisher service.IPublisherService
	logger    logger.ILogger
}

func (s *stateSink) PublishState(state entity.AppState) {
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error("session", "failed to marshal state", map[string]interface{}{"error": err.Error()})
		return
	}
	s.broker.Publish(data)
	if err := s.publisher.Publish(context.Background(), events.StateChanged(string(state.Kind))); err != nil {
		s.logger.Error("session", "failed to publish state event", map[string]interface{}{"error": err.Error()})
	}
}

func (s *stateSink) ResultSaved(experimentKey, resultKey string) {
	if err := s.publisher.Publish(context.Background(), events.ResultSaved(experimentKey, resultKey)); err != nil {
		s.logger.Error("session", "failed to publish result event", map[string]interface{}{"error": err.Error()})
	}
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			// Publish runs inside the session's commit path; the buffer
			// keeps a slow consumer from backpressuring state transitions.
			OutputChannelBuffer: 64,
		},
		watermillLogger,
	)
	publisherService := service.NewPublisherService(sessionEventsTopic, pubSub)

	// Pairing identity
	secret := cfg.Session.Secret
	if secret == "" {
		generated, err := pairing.GenerateSecret()
		if err != nil {
			log.Fatalf("[FATAL] Failed to generate pairing secret: %v", err)
		}
		secret = generated
	}
	ip, err := pairing.LocalIP()
	if err != nil {
		sysLogger.Warn("bootstrap", "could not resolve local ip, using loopback", map[string]interface{}{"error": err.Error()})
		ip = "127.0.0.1"
	}
	port, err := strconv.Atoi(cfg.App.Port)
	if err != nil {
		log.Fatalf("[FATAL] Invalid APP_PORT %q: %v", cfg.App.Port, err)
	}
	payload := pairing.Payload{IP: ip, Port: port, Secret: secret}

	// Storage: Postgres when configured, in-memory stores otherwise.
	var (
		presetRepo     contract.PresetRepository
		experimentRepo contract.ExperimentRepository
		resultRepo     contract.ResultRepository
	)
	if db != nil {
		if err := db.AutoMigrate(&model.Preset{}, &model.Experiment{}, &model.ExperimentResult{}); err != nil {
			log.Fatalf("[FATAL] Failed to migrate database: %v", err)
		}
		presetRepo = implementation.NewPresetRepository(db)
		experimentRepo = implementation.NewExperimentRepository(db)
		resultRepo = implementation.NewResultRepository(db)
	} else {
		sysLogger.Info("bootstrap", "no database configured, using in-memory stores", nil)
		presetRepo = memory.NewPresetRepository()
		experimentRepo = memory.NewExperimentRepository()
		resultRepo = memory.NewResultRepository()
	}

	// State fanout
	broker := stream.NewBroker(sysLogger)
	sink := &stateSink{broker: broker, publisher: publisherService, logger: sysLogger}

	sessionManager := session.NewManager(resultRepo, sink, sysLogger,
		session.WithBlankingDelay(time.Duration(cfg.Session.PromptBlankingMs)*time.Millisecond),
		session.WithResultListener(sink),
	)

	// The broker invokes this from whichever goroutine changed the count,
	// so the closure must not keep state of its own.
	broker.OnCountChange(func(count int, joined bool) {
		evt := events.ClientDisconnected(count)
		if joined {
			evt = events.ClientConnected(count)
		}
		if err := publisherService.Publish(context.Background(), evt); err != nil {
			sysLogger.Error("bootstrap", "failed to publish client count event", map[string]interface{}{"error": err.Error()})
		}
	})

	// Console event feed
	hub := websocket.NewHub(logger.NewIsolatedLogger("ws." + cfg.App.LogFilePath))
	notifierService := service.NewNotifierService(pubSub, sessionEventsTopic, hub, sysLogger)

	// Services
	experimentService := service.NewExperimentService(experimentRepo, presetRepo, sysLogger)
	presetService := service.NewPresetService(presetRepo, experimentRepo, sessionManager, sysLogger)
	sessionService := service.NewSessionService(sessionManager, experimentService, sysLogger)
	resultService := service.NewResultService(resultRepo, sysLogger)

	return &Container{
		StateController:      controller.NewStateController(sessionService, broker, sysLogger),
		SessionController:    controller.NewSessionController(sessionService),
		PresetController:     controller.NewPresetController(presetService),
		ExperimentController: controller.NewExperimentController(experimentService),
		ResultController:     controller.NewResultController(resultService),
		PairingController:    controller.NewPairingController(payload),
		ParameterController:  controller.NewParameterController(),

		NotifierService: notifierService,
		WebSocketHub:    hub,

		SessionManager: sessionManager,
		Broker:         broker,
		Pairing:        payload,
		Logger:         sysLogger,
	}
}

// EventHandler builds the websocket feed handler; split out so the
// server can register it with the rest of the routes.
func (c *Container) EventHandler() *handler.EventHandler {
	return handler.NewEventHandler(c.WebSocketHub, c.Pairing.Secret, c.Logger)
}
