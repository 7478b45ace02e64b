package cvs

import (
	"context"
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/chmouel/lazycvs/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

var errEmptyRevision = errors.New("no revision reported")

// CurrentRevision asks the status extension which revision path is based on.
func (s *Service) CurrentRevision(ctx context.Context, path string) (string, error) {
	dir, base := splitPath(path)
	res, err := s.runIn(ctx, dir, s.status, "revision", base)
	if err != nil {
		return "", &RevisionLookupError{Path: path, Err: err}
	}
	rev := strings.TrimSpace(res.Stdout)
	if rev == "" {
		return "", &RevisionLookupError{Path: path, Err: errEmptyRevision}
	}
	return rev, nil
}

// resolveRevision returns rev, looking it up when empty.
func (s *Service) resolveRevision(ctx context.Context, path, rev string) (string, error) {
	if rev != "" {
		return rev, nil
	}
	return s.CurrentRevision(ctx, path)
}

// FetchRevisionContent returns path's content at rev, as printed by cvs.
func (s *Service) FetchRevisionContent(ctx context.Context, path, rev string) (string, error) {
	dir, base := splitPath(path)
	res, err := s.runIn(ctx, dir, s.cvs, "update", "-r", rev, "-p", base)
	if err != nil {
		return "", &RevisionFetchError{Path: path, Revision: rev, Err: err}
	}
	return res.Stdout, nil
}

// Diff returns the committed and live content of path. The historical
// content and the disk read run concurrently once the revision is known.
func (s *Service) Diff(ctx context.Context, path string) (*models.DiffPayload, error) {
	rev, err := s.CurrentRevision(ctx, path)
	if err != nil {
		return nil, err
	}

	payload := &models.DiffPayload{Path: path, Revision: rev}
	var current []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		original, err := s.FetchRevisionContent(gctx, path, rev)
		payload.Original = original
		return err
	})
	g.Go(func() error {
		var err error
		current, err = os.ReadFile(path) // #nosec G304 -- path comes from the status listing
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	payload.Current = string(current)
	payload.MimeType = ContentType(path, current)
	return payload, nil
}

// ContentType classifies path by extension, sniffing data when the
// extension is unknown.
func ContentType(path string, data []byte) string {
	if ext := filepath.Ext(path); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return mimetype.Detect(data).String()
}
