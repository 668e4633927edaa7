package source

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/mqy/chatdump/auth"
	"github.com/mqy/chatdump/chatstore"
)

const (
	DefaultGatewayURL = "http://127.0.0.1:8081"

	headerAPIID   = "X-Api-Id"
	headerAPIHash = "X-Api-Hash"
)

// GatewaySource implements ISource over the HTTP JSON API of a platform gateway:
//
//	GET /dialogs
//	GET /dialogs/{id}/participants
//	GET /dialogs/{id}/messages?after_id=N&limit=N&order=asc
//	GET /dialogs/{id}/messages/{mid}/media
type GatewaySource struct {
	client *resty.Client
}

var _ ISource = (*GatewaySource)(nil)

// NewGatewaySource creates a source; timeout 0 means no timeout.
func NewGatewaySource(baseURL string, creds *auth.Credentials, timeout time.Duration) *GatewaySource {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader(headerAPIID, strconv.Itoa(creds.APIID)).
		SetHeader(headerAPIHash, creds.APIHash).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &GatewaySource{client: client}
}

func (s *GatewaySource) getJSON(ctx context.Context, path string, query map[string]string, result interface{}) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(result).
		Get(path)
	if err != nil {
		return errors.Wrapf(err, "gateway: GET %s", path)
	}
	if resp.IsError() {
		return errors.Errorf("gateway: GET %s: %s: %s", path, resp.Status(), strings.TrimSpace(string(resp.Body())))
	}
	return nil
}

func (s *GatewaySource) ListDialogs(ctx context.Context) ([]*chatstore.Dialog, error) {
	var out []*chatstore.Dialog
	if err := s.getJSON(ctx, "/dialogs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GatewaySource) ListParticipants(ctx context.Context, dialogID int64) ([]*chatstore.Participant, error) {
	var out []*chatstore.Participant
	if err := s.getJSON(ctx, fmt.Sprintf("/dialogs/%d/participants", dialogID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GatewaySource) GetMessages(ctx context.Context, dialog *chatstore.Dialog, afterID int64, limit int) ([]*chatstore.Message, error) {
	var out []*chatstore.Message
	query := map[string]string{
		"after_id": strconv.FormatInt(afterID, 10),
		"limit":    strconv.Itoa(limit),
		"order":    "asc",
	}
	if err := s.getJSON(ctx, fmt.Sprintf("/dialogs/%d/messages", dialog.ID), query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GatewaySource) DownloadMedia(ctx context.Context, msg *chatstore.Message, dstPath string) error {
	path := fmt.Sprintf("/dialogs/%d/messages/%d/media", msg.DialogID, msg.ID)
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetOutput(dstPath).
		Get(path)
	if err != nil {
		return errors.Wrapf(err, "gateway: GET %s", path)
	}
	if resp.IsError() {
		// The body was saved as the media file; it is an error page.
		if err := os.Remove(dstPath); err != nil && !os.IsNotExist(err) {
			glog.Errorf("gateway: error remove `%s`: %v", dstPath, err)
		}
		return errors.Errorf("gateway: GET %s: %s", path, resp.Status())
	}
	return nil
}
