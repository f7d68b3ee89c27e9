package settings

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"rektbot/internal/domain/subscriber"
	"rektbot/pkg/logger"
)

// Choice values arriving from the list-mode keyboard
const (
	ChoiceAll     = "list_all"
	ChoiceNoTop20 = "list_no_top20"
	ChoiceNoTop50 = "list_no_top50"
	ChoiceCancel  = "list_cancel"
)

var choiceModes = map[string]subscriber.ListMode{
	ChoiceAll:     subscriber.ListModeAll,
	ChoiceNoTop20: subscriber.ListModeExcludeTop20,
	ChoiceNoTop50: subscriber.ListModeExcludeTop50,
}

var modeLabels = map[subscriber.ListMode]string{
	subscriber.ListModeAll:          "all tokens",
	subscriber.ListModeExcludeTop20: "without top 20",
	subscriber.ListModeExcludeTop50: "without top 50",
}

// Replier delivers the machine's prompts and confirmations to a subscriber.
// The conversation machine stays transport-free behind it.
type Replier interface {
	// SendText sends a plain prompt
	SendText(id subscriber.ID, text string) error

	// SendMainMenu sends text with the main settings keyboard attached
	SendMainMenu(id subscriber.ID, text string) error

	// SendListMenu sends text with the list-mode choice keyboard attached
	SendListMenu(id subscriber.ID, text string) error
}

// Service is a per-subscriber finite-state controller for multi-turn
// settings capture. It is the only writer of the configuration store; the
// event filter reads the store concurrently.
type Service struct {
	configs *subscriber.Store
	phases  *subscriber.PhaseStore
	replier Replier
	log     *logger.Logger
}

// NewService creates the conversation service
func NewService(configs *subscriber.Store, phases *subscriber.PhaseStore, replier Replier, log *logger.Logger) *Service {
	return &Service{
		configs: configs,
		phases:  phases,
		replier: replier,
		log:     log.With("component", "settings"),
	}
}

// Start handles the /start command. Accepted in any phase: it resets the
// conversation and initializes defaults without clobbering existing settings.
func (s *Service) Start(id subscriber.ID) {
	cfg := s.configs.Ensure(id)
	s.phases.Reset(id)

	s.log.Infow("Subscriber started",
		"subscriber_id", id,
		"threshold", cfg.Threshold,
		"list_mode", cfg.ListMode,
	)

	s.reply(id, s.replier.SendMainMenu,
		"Hi! I scan the exchange for liquidations.\n\nChoose an action:")
}

// BeginThresholdChange moves the subscriber into threshold entry
func (s *Service) BeginThresholdChange(id subscriber.ID) {
	s.phases.Set(id, subscriber.PhaseAwaitingThreshold)
	s.reply(id, s.replier.SendText, "Enter the minimum liquidation volume (USD):")
}

// BeginListModeChange moves the subscriber into list-mode selection
func (s *Service) BeginListModeChange(id subscriber.ID) {
	s.phases.Set(id, subscriber.PhaseAwaitingListMode)
	s.reply(id, s.replier.SendListMenu, "Choose the liquidation list mode:")
}

// HandleText processes free-form text according to the subscriber's phase.
// Invalid input re-prompts and keeps the phase; there is no retry limit.
func (s *Service) HandleText(id subscriber.ID, text string) {
	switch s.phases.Get(id) {
	case subscriber.PhaseAwaitingThreshold:
		s.handleThresholdInput(id, text)

	case subscriber.PhaseAwaitingListMode:
		// Free text is not a valid choice for this phase
		s.reply(id, s.replier.SendListMenu, "Please pick one of the options:")

	default:
		s.reply(id, s.replier.SendMainMenu, "Choose an action:")
	}
}

// HandleChoice processes a list-mode keyboard choice
func (s *Service) HandleChoice(id subscriber.ID, choice string) {
	if s.phases.Get(id) != subscriber.PhaseAwaitingListMode {
		// Stale keyboard press from a finished conversation
		s.reply(id, s.replier.SendMainMenu, "Choose an action:")
		return
	}

	if choice == ChoiceCancel {
		s.phases.Reset(id)
		s.reply(id, s.replier.SendMainMenu, "❌ Cancelled.")
		return
	}

	mode, ok := choiceModes[choice]
	if !ok {
		s.reply(id, s.replier.SendListMenu, "Please pick one of the options:")
		return
	}

	cfg := s.configs.Get(id)
	cfg.ListMode = mode
	s.configs.Set(id, cfg)
	s.phases.Reset(id)

	s.log.Infow("List mode updated", "subscriber_id", id, "list_mode", mode)

	s.reply(id, s.replier.SendMainMenu, fmt.Sprintf("✅ Mode: %s", modeLabels[mode]))
}

func (s *Service) handleThresholdInput(id subscriber.ID, text string) {
	value, err := ParseThreshold(text)
	if err != nil {
		s.log.Debugw("Invalid threshold input", "subscriber_id", id, "input", text, "error", err)
		s.reply(id, s.replier.SendText, "❌ That doesn't look like a number. Try again:")
		return
	}

	cfg := s.configs.Get(id)
	cfg.Threshold = value
	s.configs.Set(id, cfg)
	s.phases.Reset(id)

	s.log.Infow("Threshold updated", "subscriber_id", id, "threshold", value)

	s.reply(id, s.replier.SendMainMenu,
		fmt.Sprintf("✅ Threshold set: from $%s", humanize.CommafWithDigits(value.InexactFloat64(), 2)))
}

// reply sends through the given replier method; delivery failures are logged,
// the conversation state is already settled either way.
func (s *Service) reply(id subscriber.ID, send func(subscriber.ID, string) error, text string) {
	if err := send(id, text); err != nil {
		s.log.Errorw("Failed to send reply", "subscriber_id", id, "error", err)
	}
}
