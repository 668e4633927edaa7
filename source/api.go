package source

//go:generate mockgen -destination=mock/mock_source.go -package=mock_source github.com/mqy/chatdump/source ISource

import (
	"context"

	"github.com/mqy/chatdump/chatstore"
)

// ISource is the messaging-platform client the dumper depends on.
type ISource interface {
	// ListDialogs lists all dialogs visible to the account.
	ListDialogs(ctx context.Context) ([]*chatstore.Dialog, error)

	// ListParticipants lists members of the dialog. It may fail, e.g. for channels without admin rights.
	ListParticipants(ctx context.Context, dialogID int64) ([]*chatstore.Participant, error)

	// GetMessages gets at most `limit` messages with id > afterID, order by id ASC.
	// An empty page means there is nothing newer.
	GetMessages(ctx context.Context, dialog *chatstore.Dialog, afterID int64, limit int) ([]*chatstore.Message, error)

	// DownloadMedia writes the media of `msg` to dstPath, overwriting.
	DownloadMedia(ctx context.Context, msg *chatstore.Message, dstPath string) error
}
