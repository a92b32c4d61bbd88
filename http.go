package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/session"
)

const (
	ErrMsgInvalidBody      = "request body must be a JSON object"
	ErrMsgInvalidProductID = "product id must be a whole number"
)

type sessionCtxKey struct{}

// newHTTPHandler exposes the cart service as a JSON API.
func newHTTPHandler(s *server) http.Handler {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(requestLogger(s.logger))
	router.Use(chimw.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Get("/products", s.httpListProducts)
	router.Post("/sessions", s.httpOpenSession)

	router.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Use(s.loadSession)
		r.Delete("/", s.httpCloseSession)
		r.Get("/cart", s.httpGetCart)
		r.Get("/history", s.httpGetHistory)
		r.Post("/items", s.httpAddItem)
		r.Delete("/items", s.httpCommand(CmdClearCart))
		r.Route("/items/{productID}", func(r chi.Router) {
			r.Put("/", s.httpSetQuantity)
			r.Delete("/", s.httpCommand(CmdRemoveItem))
			r.Post("/increment", s.httpCommand(CmdIncrementQuantity))
			r.Post("/decrement", s.httpCommand(CmdDecrementQuantity))
		})
	})
	return router
}

// newHTTPServer wraps the JSON API in an http.Server listening on addr.
func newHTTPServer(addr string, s *server) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      newHTTPHandler(s),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (s *server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.manager.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionCtxKey{}).(*session.Session)
}

func (s *server) httpListProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newProductsView(s.manager.Catalog()))
}

func (s *server) httpOpenSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.manager.Open()
	writeJSON(w, http.StatusCreated, newCartView(sess, sess.Cart()))
}

func (s *server) httpCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Close(sessionFrom(r).ID()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) httpGetCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, newCartView(sess, sess.Cart()))
}

func (s *server) httpGetHistory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	book, replayed := s.manager.Replay(sess)
	view, err := newHistoryView(sess, book, replayed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) httpAddItem(w http.ResponseWriter, r *http.Request) {
	args, err := decodeArgs(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.runCommand(w, r, CmdAddItem, args)
}

func (s *server) httpSetQuantity(w http.ResponseWriter, r *http.Request) {
	args, err := decodeArgs(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := setProductID(r, args); err != nil {
		writeError(w, err)
		return
	}
	s.runCommand(w, r, CmdSetQuantity, args)
}

// httpCommand serves routes whose only argument is the optional product
// id in the path.
func (s *server) httpCommand(command string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		args := &structpb.Struct{Fields: map[string]*structpb.Value{}}
		if chi.URLParam(r, "productID") != "" {
			if err := setProductID(r, args); err != nil {
				writeError(w, err)
				return
			}
		}
		s.runCommand(w, r, command, args)
	}
}

func (s *server) runCommand(w http.ResponseWriter, r *http.Request, command string, args *structpb.Struct) {
	sess := sessionFrom(r)
	outcome, err := s.dispatch(sess, command, args)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOutcomeView(sess, outcome))
}

func decodeArgs(r *http.Request) (*structpb.Struct, error) {
	args, err := decodeStruct(r.Body)
	if err != nil {
		return nil, evented.NewInvalidArgument(ErrMsgInvalidBody)
	}
	return args, nil
}

func setProductID(r *http.Request, args *structpb.Struct) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		return evented.NewInvalidArgument(ErrMsgInvalidProductID)
	}
	if args.Fields == nil {
		args.Fields = map[string]*structpb.Value{}
	}
	args.Fields[ArgProductID] = structpb.NewStringValue(strconv.FormatInt(id, 10))
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	cmdErr := evented.AsCommandError(err)
	if cmdErr == nil {
		writeJSON(w, http.StatusInternalServerError, errorView{Error: "internal error", Code: "INTERNAL"})
		return
	}
	writeJSON(w, httpStatus(err), errorView{Error: cmdErr.Message, Code: cmdErr.Code.String()})
}

func httpStatus(err error) int {
	switch {
	case evented.IsValidation(err):
		return http.StatusBadRequest
	case evented.IsFailedPrecondition(err):
		return http.StatusPreconditionFailed
	case evented.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", chimw.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
