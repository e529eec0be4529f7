package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"medicalbot/internal/chat"
	"medicalbot/internal/config"
	"medicalbot/internal/models"
	"medicalbot/internal/rag"
	"medicalbot/internal/render"
	"medicalbot/internal/session"
)

type ChatRequest struct {
	Msg *string `json:"msg"`
	// Format "html" adds a rendered copy of the answer.
	Format string `json:"format,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
	HTML     string `json:"html,omitempty"`
}

type ChatHandler struct {
	chain          rag.Invoker
	sessions       session.Store
	cleaner        *chat.Cleaner
	window         int
	retrieveLatest bool
	timeout        time.Duration
	cookie         config.SessionConfig
	metrics        *metrics
}

// Chat handles POST /get.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil || req.Msg == nil {
		return h.respond(c, http.StatusBadRequest, ChatResponse{Response: models.MsgInvalidRequest})
	}
	msg := *req.Msg
	log.Info().Str("msg", msg).Msg("Received message")

	resp, err := h.reply(c, msg, req.Format == "html")
	if err != nil {
		log.Error().Err(err).Msg("Chat request failed")
		return h.respond(c, http.StatusInternalServerError, ChatResponse{Response: models.MsgServerError})
	}
	log.Info().Str("answer", resp.Response).Msg("Final answer")
	return h.respond(c, http.StatusOK, *resp)
}

func (h *ChatHandler) reply(c echo.Context, msg string, withHTML bool) (*ChatResponse, error) {
	ctx := c.Request().Context()
	sess, err := h.session(c)
	if err != nil {
		return nil, err
	}

	if err := sess.Append(ctx, chat.UserLine(msg)); err != nil {
		return nil, err
	}
	history, err := sess.History(ctx)
	if err != nil {
		return nil, err
	}

	input := rag.Input{Question: chat.BuildContext(history, h.window)}
	if h.retrieveLatest {
		input.Query = msg
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	start := time.Now()
	result, err := h.chain.Invoke(ctx, input)
	h.metrics.observeChain(start)
	if err != nil {
		return nil, fmt.Errorf("invoke chain: %w", err)
	}

	resp := &ChatResponse{Response: h.cleaner.Clean(result.Content)}
	if withHTML {
		if resp.HTML, err = render.Markdown(resp.Response); err != nil {
			return nil, fmt.Errorf("render answer: %w", err)
		}
	}

	if err := sess.Append(ctx, chat.BotLine(resp.Response)); err != nil {
		return nil, err
	}
	return resp, nil
}

// session resumes the session named by the cookie or starts a new one, and
// refreshes the cookie either way.
func (h *ChatHandler) session(c echo.Context) (session.Session, error) {
	var id string
	if ck, err := c.Cookie(h.cookie.CookieName); err == nil {
		id = ck.Value
	}
	sess, err := h.sessions.EnsureSession(c.Request().Context(), id)
	if err != nil {
		return nil, fmt.Errorf("ensure session: %w", err)
	}
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    sess.ID(),
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func (h *ChatHandler) respond(c echo.Context, code int, body ChatResponse) error {
	h.metrics.observeRequest(code)
	return c.JSON(code, body)
}
