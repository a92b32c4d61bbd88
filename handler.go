package main

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/logic"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/session"
)

// server implements CartServer on top of a session.Manager. The HTTP API
// shares its methods so both transports run identical logic.
type server struct {
	manager *session.Manager
	router  *cartRouter
	logger  *zap.Logger
}

func newServer(m *session.Manager, logger *zap.Logger) *server {
	return &server{manager: m, router: newCartRouter(m), logger: logger}
}

func (s *server) OpenSession(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	sess := s.manager.Open()
	return respond(newCartView(sess, sess.Cart()))
}

func (s *server) CloseSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionIDArg(req)
	if err != nil {
		return nil, evented.MapCommandError(err)
	}
	if err := s.manager.Close(id); err != nil {
		return nil, evented.MapCommandError(err)
	}
	return &structpb.Struct{}, nil
}

func (s *server) ListProducts(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return respond(newProductsView(s.manager.Catalog()))
}

func (s *server) GetCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, evented.MapCommandError(err)
	}
	return respond(newCartView(sess, sess.Cart()))
}

func (s *server) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, evented.MapCommandError(err)
	}
	book, replayed := s.manager.Replay(sess)
	view, err := newHistoryView(sess, book, replayed)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to read history: %v", err)
	}
	return respond(view)
}

func (s *server) Handle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, evented.MapCommandError(err)
	}
	command := req.GetFields()[ArgCommand].GetStringValue()

	outcome, err := s.dispatch(sess, command, req)
	if err != nil {
		return nil, evented.MapCommandError(err)
	}
	return respond(newOutcomeView(sess, outcome))
}

func (s *server) dispatch(sess *session.Session, command string, args *structpb.Struct) (logic.Outcome, error) {
	outcome, err := s.router.Dispatch(command, sess, args)
	if err != nil && evented.AsCommandError(err) == nil {
		s.logger.Error("command failed",
			zap.String("session_id", sess.ID()),
			zap.String("command", command),
			zap.Error(err),
		)
	}
	return outcome, err
}

func (s *server) session(req *structpb.Struct) (*session.Session, error) {
	id, err := sessionIDArg(req)
	if err != nil {
		return nil, err
	}
	return s.manager.Get(id)
}

func sessionIDArg(req *structpb.Struct) (string, error) {
	id := req.GetFields()[ArgSessionID].GetStringValue()
	if err := evented.RequireNotEmptyString(id, ErrMsgSessionIDRequired); err != nil {
		return "", err
	}
	return id, nil
}

func respond(view any) (*structpb.Struct, error) {
	out, err := toStruct(view)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}
