// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package text serves the pipe-delimited poll protocol over TCP.
package text

import (
	"errors"

	"github.com/google/uuid"

	"pollStore/api/text/parser"
	"pollStore/internal/poll"
	"pollStore/internal/store"
	"pollStore/pkg/log"
	"pollStore/pkg/metrics"
)

// Result labels used for request metrics
const (
	resultOK               = "ok"
	resultInvalidInput     = "invalid_input"
	resultUnknownCommand   = "unknown_command"
	resultNotFound         = "not_found"
	resultClosed           = "closed"
	resultAlreadyResponded = "already_responded"
	resultFull             = "full"
	resultDurability       = "durability"
	resultInternal         = "internal"
)

type handlerFunc func(h *Handler, req *parser.Request) (string, string)

var handlers = map[parser.Action]handlerFunc{
	parser.ActionCreate:  (*Handler).handleCreate,
	parser.ActionRespond: (*Handler).handleRespond,
	parser.ActionResult:  (*Handler).handleResult,
	parser.ActionList:    (*Handler).handleList,
	parser.ActionClose:   (*Handler).handleClose,
}

// Handler turns one request message into exactly one response message.
// It is safe for concurrent use; all shared state lives in the store.
type Handler struct {
	store    *store.Store
	observer *metrics.RequestObserver
}

// NewHandler creates a request handler. m may be nil.
func NewHandler(st *store.Store, m *metrics.Metrics) *Handler {
	return &Handler{
		store:    st,
		observer: metrics.NewRequestObserver(m),
	}
}

// Handle dispatches one request message.
func (h *Handler) Handle(msg string) string {
	req, err := parser.Parse(msg)
	if errors.Is(err, parser.ErrUnknownCommand) {
		return h.observer.Observe("UNKNOWN", func() (string, string) {
			return unknownCommand, resultUnknownCommand
		})
	}

	token := req.Command.Token()
	return h.observer.Observe(token, func() (string, string) {
		if err != nil {
			return invalidFormat(token), resultInvalidInput
		}

		requestID := uuid.NewString()
		log.Debug("Handling request",
			log.RequestID(requestID),
			log.Command(token),
			log.ItemID(req.ID),
			log.Component("text"))

		resp, result := handlers[req.Command.Action](h, req)

		log.Debug("Request handled",
			log.RequestID(requestID),
			log.Command(token),
			log.String("result", result),
			log.Component("text"))
		return resp, result
	})
}

func (h *Handler) handleCreate(req *parser.Request) (string, string) {
	kind := req.Command.Kind
	if len(req.Options) < poll.MinOptions || len(req.Options) > poll.MaxOptions {
		return optionCount(kind), resultInvalidInput
	}
	id, err := h.store.Create(kind, req.Prompt, req.Options)
	if err != nil {
		return h.errorResponse(req, err)
	}
	return created(kind, id), resultOK
}

func (h *Handler) handleRespond(req *parser.Request) (string, string) {
	if err := h.store.Respond(req.Command.Kind, req.ID, req.Username, req.Selections); err != nil {
		return h.errorResponse(req, err)
	}
	return recorded(req.Command.Kind), resultOK
}

func (h *Handler) handleResult(req *parser.Request) (string, string) {
	res, err := h.store.Result(req.Command.Kind, req.ID)
	if err != nil {
		return h.errorResponse(req, err)
	}
	return formatResult(req.Command.Kind, res), resultOK
}

func (h *Handler) handleList(req *parser.Request) (string, string) {
	items, err := h.store.List(req.Command.Kind)
	if err != nil {
		return h.errorResponse(req, err)
	}
	return formatList(req.Command.Kind, items), resultOK
}

func (h *Handler) handleClose(req *parser.Request) (string, string) {
	if err := h.store.Close(req.Command.Kind, req.ID); err != nil {
		return h.errorResponse(req, err)
	}
	return closed(req.Command.Kind, req.ID), resultOK
}

// errorResponse maps store errors to client messages.
func (h *Handler) errorResponse(req *parser.Request, err error) (string, string) {
	kind := req.Command.Kind
	switch {
	case errors.Is(err, poll.ErrNotFound):
		return notFound(kind), resultNotFound
	case errors.Is(err, poll.ErrClosed):
		return itemClosed(kind), resultClosed
	case errors.Is(err, poll.ErrAlreadyResponded):
		return alreadyResponded(kind), resultAlreadyResponded
	case errors.Is(err, poll.ErrFull):
		return full(kind), resultFull
	case errors.Is(err, poll.ErrDurability):
		return saveFailed(kind), resultDurability
	case errors.Is(err, poll.ErrInvalidInput):
		return invalidFormat(req.Command.Token()), resultInvalidInput
	default:
		log.Error("Unexpected store error",
			log.Command(req.Command.Token()),
			log.ItemID(req.ID),
			log.Err(err),
			log.Component("text"))
		return errorPrefix + "Internal error", resultInternal
	}
}
