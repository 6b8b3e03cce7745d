package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lentik/internal/filex"
	"github.com/dmitrijs2005/lentik/internal/netx"
)

// upload adds path to the family gallery. The file is checked before
// logging in so a bad path never costs a PIN prompt.
func (a *App) upload(ctx context.Context, familyID, path, caption string) error {
	media, err := filex.ReadMedia(path)
	if err != nil {
		return err
	}

	if err := a.login(ctx); err != nil {
		return err
	}

	up, err := a.api.AddGalleryItem(ctx, familyID, media.Kind, caption)
	if err != nil {
		return fmt.Errorf("gallery: %w", err)
	}

	if err := netx.UploadToS3PresignedURL(ctx, a.api.HTTP(), up.UploadURL, media.ContentType, media.Data); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s as %s (%d bytes)\n", path, up.Item.ID, len(media.Data))
	return nil
}
