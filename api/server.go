// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package api exposes the aggregator over JSON-RPC 2.0 and provides the
// client operators use to reach it.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"code.vegaprotocol.io/obavs/libs/jsonrpc"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/metrics"
	"code.vegaprotocol.io/obavs/notary"
	"code.vegaprotocol.io/obavs/types"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

const MethodProcessSignedTaskResponse = "process_signed_task_response"

var (
	ErrCouldNotReadRequestBody = errors.New("couldn't read the HTTP request body")
	ErrRequestCannotBeBlank    = errors.New("the request can't be blank")
)

// Notary registers the signed responses of the operators.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/notary_mock.go -package mocks code.vegaprotocol.io/obavs/api Notary
type Notary interface {
	RegisterSignature(ctx context.Context, sp types.SignedTaskResponse) (notary.Receipt, error)
}

// Server is the JSON-RPC endpoint of the aggregator.
type Server struct {
	*httprouter.Router

	log    *logging.Logger
	cfg    Config
	notary Notary
	srv    *http.Server
}

func NewServer(log *logging.Logger, cfg Config, n Notary, metricsConf metrics.Config) *Server {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	s := &Server{
		Router: httprouter.New(),
		log:    log,
		cfg:    cfg,
		notary: n,
	}

	s.POST("/", s.HandleRequest)
	s.GET("/health", s.CheckHealth)
	if metricsConf.Enabled {
		s.Handler(http.MethodGet, metricsConf.Path, metrics.Handler())
	}

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.IP, cfg.Port),
		Handler:      cors.New(corsOptions(cfg)).Handler(s),
		ReadTimeout:  cfg.Timeout.Get(),
		WriteTimeout: cfg.Timeout.Get(),
	}
	return s
}

// ReloadConf updates the internal configuration.
func (s *Server) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.log.Info("starting aggregator api", logging.String("address", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "aggregator api stopped")
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("stopping aggregator api")
	return s.srv.Shutdown(ctx)
}

func (s *Server) CheckHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	request, errDetails := s.unmarshalRequest(w, r)
	if errDetails != nil {
		// the request id is unknown when the request can't be read
		s.writeResponse(w, http.StatusBadRequest, jsonrpc.NewErrorResponse("", errDetails))
		return
	}

	defer metrics.APIRequestAndTimeJSONRPC(request.Method, time.Now())
	response := s.dispatch(r.Context(), request)

	// notifications get no content back, even on error
	if request.IsNotification() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	status := http.StatusOK
	if response.Error != nil {
		if response.Error.IsInternalError() {
			status = http.StatusInternalServerError
		} else {
			status = http.StatusBadRequest
		}
	}
	s.writeResponse(w, status, response)
}

func (s *Server) dispatch(ctx context.Context, request *jsonrpc.Request) *jsonrpc.Response {
	switch request.Method {
	case MethodProcessSignedTaskResponse:
		return s.processSignedTaskResponse(ctx, request)
	default:
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.NewMethodNotFound(request.Method))
	}
}

func (s *Server) processSignedTaskResponse(ctx context.Context, request *jsonrpc.Request) *jsonrpc.Response {
	sp := types.SignedTaskResponse{}
	if len(request.Params) == 0 {
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.NewInvalidParams(errors.New("params are required")))
	}
	if err := json.Unmarshal(request.Params, &sp); err != nil {
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.NewInvalidParams(err))
	}

	receipt, err := s.notary.RegisterSignature(ctx, sp)
	if err != nil {
		s.log.Debug("signed task response rejected",
			logging.TaskIndex(sp.TaskResponse.ReferenceTaskIndex),
			logging.OperatorID(sp.OperatorID),
			logging.Error(err),
		)
		return jsonrpc.NewErrorResponse(request.ID, toErrorDetails(err))
	}

	s.log.Debug("signed task response accepted",
		logging.TaskIndex(sp.TaskResponse.ReferenceTaskIndex),
		logging.OperatorID(sp.OperatorID),
		logging.String("status", string(receipt.Status)),
	)
	return jsonrpc.NewSuccessfulResponse(request.ID, receipt)
}

func (s *Server) unmarshalRequest(w http.ResponseWriter, r *http.Request) (*jsonrpc.Request, *jsonrpc.ErrorDetails) {
	defer func() {
		_ = r.Body.Close()
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize))
	if err != nil {
		return nil, jsonrpc.NewParseError(ErrCouldNotReadRequestBody)
	}
	if len(body) == 0 {
		return nil, jsonrpc.NewParseError(ErrRequestCannotBeBlank)
	}

	request := &jsonrpc.Request{}
	if err := json.Unmarshal(body, request); err != nil {
		var syntaxError *json.SyntaxError
		if errors.As(err, &syntaxError) {
			return nil, jsonrpc.NewParseError(err)
		}
		return nil, jsonrpc.NewInvalidRequest(err)
	}
	if err := request.Check(); err != nil {
		return nil, jsonrpc.NewInvalidRequest(err)
	}
	return request, nil
}

func (s *Server) writeResponse(w http.ResponseWriter, status int, response *jsonrpc.Response) {
	buf, err := json.Marshal(response)
	if err != nil {
		s.log.Error("could not marshal response", logging.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf); err != nil {
		s.log.Debug("could not write response", logging.Error(err))
	}
}

func corsOptions(cfg Config) cors.Options {
	return cors.Options{
		AllowOriginFunc: allowedOrigin(cfg.AllowedOrigins),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         cfg.CORSMaxAge,
	}
}

func allowedOrigin(allowedOrigins []string) func(origin string) bool {
	trimScheme := func(origin string) string {
		return strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
	}
	return func(origin string) bool {
		if len(allowedOrigins) == 0 || allowedOrigins[0] == "*" {
			return true
		}
		for _, allowed := range allowedOrigins {
			if trimScheme(allowed) == trimScheme(origin) {
				return true
			}
		}
		return false
	}
}
