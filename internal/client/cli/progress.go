package cli

import (
	"io"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/media"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/schollz/progressbar/v3"
)

// progressWrapper renders a byte progress bar on w for each upload.
func progressWrapper(w io.Writer) media.TransferWrapper {
	return func(asset models.MediaAsset, body io.Reader, size int64) io.Reader {
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Uploading "+asset.Name),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
		return io.TeeReader(body, bar)
	}
}
