package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"morning-post/internal/resilience/circuitbreaker"
	"morning-post/internal/resilience/retry"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// Telegram delivers messages through the Telegram Bot API.
//
// The client is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 1 request/second with burst of 3
//     (Telegram channel limit: ~20 messages per minute per chat)
//   - Circuit breaker shared by sendMessage and sendPhoto calls
type Telegram struct {
	cfg            Config
	httpClient     *http.Client
	rateLimiter    *RateLimiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewTelegram creates a Telegram transport with the specified configuration.
func NewTelegram(cfg Config) *Telegram {
	return &Telegram{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter:    NewRateLimiter(1.0, 3),
		circuitBreaker: circuitbreaker.New(circuitbreaker.TelegramAPIConfig()),
		retryConfig:    retry.TelegramAPIConfig(),
	}
}

// apiResponse is the envelope the Bot API wraps every reply in.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *responseParams `json:"parameters"`
}

// responseParams carries auxiliary data on error replies.
type responseParams struct {
	RetryAfter int `json:"retry_after"`
}

// sentMessage is the subset of the Message object the transport cares about.
type sentMessage struct {
	MessageID int64 `json:"message_id"`
}

// SendText delivers a plain text message to the target chat or channel.
// Messages are sent with HTML parse mode.
func (t *Telegram) SendText(ctx context.Context, target, text string) (*DeliveryReceipt, error) {
	if target == "" {
		return nil, fmt.Errorf("target must not be empty")
	}
	if n := utf8.RuneCountInString(text); n > MessageLimit {
		return nil, fmt.Errorf("message length %d exceeds limit %d", n, MessageLimit)
	}

	payload := map[string]any{
		"chat_id":                  target,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	return t.sendWithRetry(ctx, "sendMessage", target, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("sendMessage"), bytes.NewReader(jsonData))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// SendPhoto delivers a photo with an optional caption to the target chat or
// channel. The photo is uploaded as multipart form data; captions are sent
// with HTML parse mode.
func (t *Telegram) SendPhoto(ctx context.Context, target string, photo []byte, caption string) (*DeliveryReceipt, error) {
	if target == "" {
		return nil, fmt.Errorf("target must not be empty")
	}
	if len(photo) == 0 {
		return nil, fmt.Errorf("photo must not be empty")
	}
	if n := utf8.RuneCountInString(caption); n > CaptionLimit {
		return nil, fmt.Errorf("caption length %d exceeds limit %d", n, CaptionLimit)
	}

	// The multipart body is built once and replayed on each retry attempt.
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("chat_id", target); err != nil {
		return nil, fmt.Errorf("write chat_id field: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return nil, fmt.Errorf("write caption field: %w", err)
		}
		if err := writer.WriteField("parse_mode", "HTML"); err != nil {
			return nil, fmt.Errorf("write parse_mode field: %w", err)
		}
	}
	part, err := writer.CreateFormFile("photo", "post.jpg")
	if err != nil {
		return nil, fmt.Errorf("create photo part: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return nil, fmt.Errorf("write photo bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	contentType := writer.FormDataContentType()
	raw := body.Bytes()

	return t.sendWithRetry(ctx, "sendPhoto", target, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("sendPhoto"), bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
}

func (t *Telegram) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.cfg.BaseURL, t.cfg.BotToken, method)
}

// sendWithRetry performs one API call with rate limiting, circuit breaking
// and retry.
//
// Retry strategy:
//   - 429 errors: wait the retry_after duration reported by Telegram
//   - Server errors (5xx) and network errors: exponential backoff
//   - Client errors (4xx, non-429): no retry, fail immediately
//
// All attempts are logged with a per-call request_id for tracing.
func (t *Telegram) sendWithRetry(ctx context.Context, method, target string, newRequest func(context.Context) (*http.Request, error)) (*DeliveryReceipt, error) {
	requestID := uuid.NewString()

	if err := t.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	delay := t.retryConfig.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= t.retryConfig.MaxAttempts; attempt++ {
		receipt, err := t.attempt(ctx, method, newRequest)
		if err == nil {
			receipt.Target = target
			slog.Info("telegram delivery successful",
				slog.String("request_id", requestID),
				slog.String("method", method),
				slog.Int64("message_id", receipt.MessageID),
				slog.Int("attempt", attempt))
			return receipt, nil
		}

		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("telegram circuit breaker open, skipping delivery",
				slog.String("request_id", requestID),
				slog.String("method", method),
				slog.String("state", t.circuitBreaker.State().String()))
			return nil, fmt.Errorf("telegram api unavailable: %w", err)
		}

		if rateLimitErr, ok := asRateLimitError(err); ok {
			slog.Warn("telegram rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.String("method", method),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return nil, fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("telegram delivery failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("method", method),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return nil, err
		}

		if attempt < t.retryConfig.MaxAttempts {
			slog.Warn("telegram delivery failed, retrying",
				slog.String("request_id", requestID),
				slog.String("method", method),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}

			delay = time.Duration(float64(delay) * t.retryConfig.Multiplier)
			if delay > t.retryConfig.MaxDelay {
				delay = t.retryConfig.MaxDelay
			}
		}
	}

	slog.Error("telegram delivery failed after all attempts",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.Int("attempts", t.retryConfig.MaxAttempts),
		slog.Any("error", lastErr))

	return nil, fmt.Errorf("telegram %s failed after %d attempts: %w", method, t.retryConfig.MaxAttempts, lastErr)
}

// attempt performs a single API call through the circuit breaker.
func (t *Telegram) attempt(ctx context.Context, method string, newRequest func(context.Context) (*http.Request, error)) (*DeliveryReceipt, error) {
	cbResult, err := t.circuitBreaker.Execute(func() (interface{}, error) {
		req, err := newRequest(ctx)
		if err != nil {
			return nil, fmt.Errorf("create %s request: %w", method, err)
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute %s request: %w", method, err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, _ := io.ReadAll(resp.Body)

		return t.decodeResponse(resp, body)
	})
	if err != nil {
		return nil, err
	}

	receipt, ok := cbResult.(*DeliveryReceipt)
	if !ok {
		return nil, fmt.Errorf("unexpected circuit breaker result type %T", cbResult)
	}
	return receipt, nil
}

// decodeResponse maps an API reply onto a receipt or a typed error.
func (t *Telegram) decodeResponse(resp *http.Response, body []byte) (*DeliveryReceipt, error) {
	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil, fmt.Errorf("decode telegram response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && envelope.OK {
		var msg sentMessage
		if err := json.Unmarshal(envelope.Result, &msg); err != nil {
			return nil, fmt.Errorf("decode telegram message: %w", err)
		}
		return &DeliveryReceipt{
			MessageID: msg.MessageID,
			SentAt:    time.Now(),
		}, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			Message:    "telegram rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, &envelope),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("telegram api client error: %s", envelope.Description),
		}
	}

	if resp.StatusCode >= 500 {
		return nil, &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("telegram api server error: %s", envelope.Description),
		}
	}

	return nil, fmt.Errorf("unexpected telegram response: status %d, ok=%v, description=%q",
		resp.StatusCode, envelope.OK, envelope.Description)
}

// extractRetryAfter extracts the retry-after duration from a 429 reply.
// It tries the response body parameters first, then falls back to the
// Retry-After header.
//
// Returns:
//   - time.Duration: Retry after duration (default 5s if not found)
func extractRetryAfter(resp *http.Response, envelope *apiResponse) time.Duration {
	if envelope.Parameters != nil && envelope.Parameters.RetryAfter > 0 {
		return time.Duration(envelope.Parameters.RetryAfter) * time.Second
	}

	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return 5 * time.Second
}
