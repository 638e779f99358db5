package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrNotConfigured = errors.New("waitlist storage is not configured")
)

// Status is the outcome of a Join call.
type Status int

const (
	Success Status = iota
	Invalid
	Duplicate
	Failed
	Unconfigured
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Invalid:
		return "invalid"
	case Duplicate:
		return "duplicate"
	case Failed:
		return "failed"
	case Unconfigured:
		return "unconfigured"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

const (
	MsgSuccess      = "You're on the list!"
	MsgInvalid      = "Please enter a valid email address."
	MsgDuplicate    = "This email is already on the waitlist."
	MsgFailed       = "An error occurred. Please try again."
	MsgUnconfigured = "Waitlist storage is not configured."
)

// Result is what a form shows after a submission.
type Result struct {
	Status  Status
	Message string
	ID      string
}

// OK reports whether the signup was stored.
func (r Result) OK() bool { return r.Status == Success }

// AskTimeout bounds each round trip to the registrar.
const AskTimeout = 5 * time.Second

// Service validates signups and forwards them to the registrar actor.
type Service struct {
	system actor.ActorSystem
	pid    *actor.PID
	log    *zap.Logger
}

// NewService starts an actor system owning inserter. A nil inserter gives a
// service whose every Join reports Unconfigured.
func NewService(ctx context.Context, inserter Inserter, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{log: log}
	if inserter == nil {
		return s, nil
	}

	system, err := actor.NewActorSystem("waitlist",
		actor.WithLogger(golog.DiscardLogger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("waitlist: create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("waitlist: start actor system: %w", err)
	}
	pid, err := system.Spawn(ctx, "registrar", NewRegistrar(inserter))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("waitlist: spawn registrar: %w", err)
	}
	s.system = system
	s.pid = pid
	return s, nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail accepts any non-empty address containing "@".
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && strings.Contains(email, "@")
}

// Join registers email. Malformed input is rejected here and never reaches
// the registrar. Failures are not retried.
func (s *Service) Join(ctx context.Context, email, useCase string) Result {
	if !ValidEmail(email) || !ValidUseCase(useCase) {
		return Result{Status: Invalid, Message: MsgInvalid}
	}
	if s.pid == nil {
		return Result{Status: Unconfigured, Message: MsgUnconfigured}
	}
	email = NormalizeEmail(email)

	reply, err := s.ask(ctx, newJoinRequest(email, useCase))
	if err != nil {
		s.log.Error("waitlist join failed", zap.Error(err))
		return Result{Status: Failed, Message: MsgFailed}
	}
	code, f, err := parseReply(reply, kindJoinReply)
	if err != nil {
		s.log.Error("waitlist join failed", zap.Error(err))
		return Result{Status: Failed, Message: MsgFailed}
	}
	switch code {
	case codeOK:
		id := f["id"].GetStringValue()
		s.log.Info("waitlist signup", zap.String("id", id), zap.String("useCase", useCase))
		return Result{Status: Success, Message: MsgSuccess, ID: id}
	case codeDuplicate:
		s.log.Info("waitlist duplicate signup")
		return Result{Status: Duplicate, Message: MsgDuplicate}
	default:
		s.log.Error("waitlist store failure", zap.String("code", code), zap.String("error", f["error"].GetStringValue()))
		return Result{Status: Failed, Message: MsgFailed}
	}
}

// Count asks the registrar how many entries are stored.
func (s *Service) Count(ctx context.Context) (int, error) {
	if s.pid == nil {
		return 0, ErrNotConfigured
	}
	reply, err := s.ask(ctx, newCountRequest())
	if err != nil {
		return 0, err
	}
	code, f, err := parseReply(reply, kindCountReply)
	if err != nil {
		return 0, err
	}
	if code != codeOK {
		return 0, fmt.Errorf("waitlist: count failed: %s", f["error"].GetStringValue())
	}
	return int(f["count"].GetNumberValue()), nil
}

func (s *Service) ask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	resp, err := actor.Ask(ctx, s.pid, req, AskTimeout)
	if err != nil {
		return nil, fmt.Errorf("waitlist: ask registrar: %w", err)
	}
	reply, ok := resp.(*structpb.Struct)
	if !ok {
		return nil, fmt.Errorf("waitlist: unexpected reply %T", resp)
	}
	return reply, nil
}

// Close stops the actor system. It is safe to call on an unconfigured service
// and more than once.
func (s *Service) Close(ctx context.Context) error {
	if s.system == nil {
		return nil
	}
	system := s.system
	s.system, s.pid = nil, nil
	return system.Stop(ctx)
}
