package waitlist

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Actor messages are plain structpb documents tagged with a kind field.
const (
	kindJoin       = "join"
	kindJoinReply  = "join_reply"
	kindCount      = "count"
	kindCountReply = "count_reply"
)

// reply codes carried back from the registrar
const (
	codeOK        = "ok"
	codeDuplicate = "duplicate"
	codeFailed    = "failed"
)

type joinRequest struct {
	Email   string
	UseCase string
}

func newJoinRequest(email, useCase string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"kind":    structpb.NewStringValue(kindJoin),
		"email":   structpb.NewStringValue(email),
		"useCase": structpb.NewStringValue(useCase),
	}}
}

func newJoinReply(code, id string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"kind": structpb.NewStringValue(kindJoinReply),
		"code": structpb.NewStringValue(code),
		"id":   structpb.NewStringValue(id),
	}}
}

// withError attaches the failure text so the caller can log it.
func withError(reply *structpb.Struct, err error) *structpb.Struct {
	reply.Fields["error"] = structpb.NewStringValue(err.Error())
	return reply
}

func newCountRequest() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"kind": structpb.NewStringValue(kindCount),
	}}
}

func newCountReply(code string, n int) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"kind":  structpb.NewStringValue(kindCountReply),
		"code":  structpb.NewStringValue(code),
		"count": structpb.NewNumberValue(float64(n)),
	}}
}

func kindOf(s *structpb.Struct) string {
	return s.GetFields()["kind"].GetStringValue()
}

func parseJoinRequest(s *structpb.Struct) (joinRequest, error) {
	if k := kindOf(s); k != kindJoin {
		return joinRequest{}, fmt.Errorf("unexpected message kind %q", k)
	}
	f := s.GetFields()
	return joinRequest{
		Email:   f["email"].GetStringValue(),
		UseCase: f["useCase"].GetStringValue(),
	}, nil
}

func parseReply(s *structpb.Struct, want string) (code string, f map[string]*structpb.Value, err error) {
	if k := kindOf(s); k != want {
		return "", nil, fmt.Errorf("unexpected reply kind %q", k)
	}
	f = s.GetFields()
	return f["code"].GetStringValue(), f, nil
}
