// Package telegram speaks the Bot API over plain HTTPS.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/domain/repository"
	xhttp "DeBrief/pkg/http"
	"DeBrief/pkg/util"
)

const provider = "telegram"

// maxMessageLen is the Bot API limit for one text message.
const maxMessageLen = 4096

// Client implements repository.Messenger.
type Client struct {
	http        *xhttp.Client
	apiURL      string
	sendTimeout time.Duration
}

// New wraps an HTTP client whose own timeout must exceed the long-poll
// timeout; sends are bounded separately by sendTimeout.
func New(client *xhttp.Client, apiURL string, sendTimeout time.Duration) *Client {
	return &Client{http: client, apiURL: strings.TrimRight(apiURL, "/"), sendTimeout: sendTimeout}
}

var _ repository.Messenger = (*Client)(nil)

type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      T      `json:"result"`
}

// ErrInvalidCredentials is returned when the token or chat id is missing.
var ErrInvalidCredentials = errors.New("telegram credentials not configured")

func (c *Client) call(ctx context.Context, token, method string, opts *xhttp.RequestOptions, dest interface{}) error {
	if token == "" {
		return ErrInvalidCredentials
	}
	opts.URL = fmt.Sprintf("%s/bot%s/%s", c.apiURL, token, method)
	if err := c.http.SendAndParse(ctx, opts, dest); err != nil {
		if errors.Is(err, xhttp.ErrDecode) {
			return repository.Malformed(provider, err)
		}
		return repository.Unavailable(provider, redact(err, token))
	}
	return nil
}

// redact keeps the bot token out of error strings that end up in logs.
func redact(err error, token string) error {
	msg := err.Error()
	if !strings.Contains(msg, token) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, token, "<token>"))
}

// SendMessage posts text to the configured chat. Long texts are cut to the API limit.
func (c *Client) SendMessage(ctx context.Context, creds models.TelegramCredentials, text string) error {
	if !creds.Valid() {
		return ErrInvalidCredentials
	}
	text = util.TruncateRunes(text, maxMessageLen, "…")
	if c.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.sendTimeout)
		defer cancel()
	}
	var resp apiResponse[struct{}]
	err := c.call(ctx, creds.BotToken, "sendMessage", &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		Body: map[string]interface{}{
			"chat_id":                  creds.ChatID,
			"text":                     text,
			"disable_web_page_preview": true,
		},
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.OK {
		return repository.Unavailable(provider, errors.New(resp.Description))
	}
	return nil
}

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		From struct {
			Username string `json:"username"`
			ID       int64  `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// GetUpdates long-polls for new messages after offset.
func (c *Client) GetUpdates(ctx context.Context, token string, offset int64, timeout time.Duration) ([]models.ChatMessage, error) {
	var resp apiResponse[[]update]
	err := c.call(ctx, token, "getUpdates", &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		QueryParams: map[string][]string{
			"offset":          {strconv.FormatInt(offset, 10)},
			"timeout":         {strconv.Itoa(int(timeout.Seconds()))},
			"allowed_updates": {`["message"]`},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, repository.Unavailable(provider, errors.New(resp.Description))
	}
	out := make([]models.ChatMessage, 0, len(resp.Result))
	for _, u := range resp.Result {
		msg := models.ChatMessage{UpdateID: u.UpdateID}
		if u.Message != nil {
			msg.ChatID = strconv.FormatInt(u.Message.Chat.ID, 10)
			msg.From = u.Message.From.Username
			msg.Text = u.Message.Text
		}
		out = append(out, msg)
	}
	return out, nil
}

// GetMe returns the bot's username, which doubles as a token check.
func (c *Client) GetMe(ctx context.Context, token string) (string, error) {
	var resp apiResponse[struct {
		Username string `json:"username"`
	}]
	if err := c.call(ctx, token, "getMe", &xhttp.RequestOptions{Method: xhttp.MethodGet}, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", repository.Unavailable(provider, errors.New(resp.Description))
	}
	return resp.Result.Username, nil
}
