package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/oceanguard/govclient/pkg/queue"
)

// Message is the Discord compatible webhook body.
type Message struct {
	Content string `json:"content"`
}

type Messager struct {
	BaseURL string
	Source  string

	notify bool
	client *http.Client
}

func NewMessager(baseURL, source string, notify bool) *Messager {
	return &Messager{
		BaseURL: baseURL,
		Source:  source,
		notify:  notify && baseURL != "",
		client:  http.DefaultClient,
	}
}

func (b *Messager) post(ctx context.Context, content string) error {
	if !b.notify {
		return nil
	}

	data, err := json.Marshal(Message{Content: fmt.Sprintf("[%s] %s", b.Source, content)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	// discord answers 204
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errors.New("error sending message")
	}

	return nil
}

func (b *Messager) Notify(ctx context.Context, message string) error {
	return b.post(ctx, message)
}

func (b *Messager) NotifyWarning(ctx context.Context, errorMessage error) error {
	return b.post(ctx, "warning: "+errorMessage.Error())
}

func (b *Messager) NotifyError(ctx context.Context, errorMessage error) error {
	return b.post(ctx, "error: "+errorMessage.Error())
}

// Process delivers a queued notification.
func (b *Messager) Process(m queue.Message) error {
	switch v := m.Message.(type) {
	case string:
		return b.Notify(context.Background(), v)
	case error:
		return b.NotifyError(context.Background(), v)
	default:
		return fmt.Errorf("unsupported message %s: %T", m.ID, m.Message)
	}
}
