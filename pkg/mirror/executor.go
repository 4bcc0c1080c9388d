package mirror

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/cache"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/pkg/errors"

	"github.com/chartsync/chartsync/pkg/log"
)

// Indirections over the remote API so tests can intercept registry calls.
var (
	remoteImageFunc = remote.Image
	remoteWriteFunc = func(ref name.Reference, img v1.Image, options ...remote.Option) error {
		return remote.Write(ref, img, options...)
	}
)

// Executor performs pull, tag and push for a single record. Each step is
// an independent failure point; the first failure aborts the remaining
// steps for that image with no retry.
type Executor struct {
	dryRun    bool
	cacheRoot string
	keychain  authn.Keychain
}

// NewExecutor creates an executor. cacheRoot hosts the per-image layer
// caches that bound local disk usage; empty means a directory under the
// system temp dir.
func NewExecutor(dryRun bool, cacheRoot string) *Executor {
	if cacheRoot == "" {
		cacheRoot = filepath.Join(os.TempDir(), "chartsync-cache")
	}
	return &Executor{
		dryRun:    dryRun,
		cacheRoot: cacheRoot,
		keychain:  authn.DefaultKeychain,
	}
}

// Execute mirrors one record and reports its terminal outcome. Dry-run is
// the only path that returns before touching local or remote state.
func (e *Executor) Execute(ctx context.Context, rec Record) Result {
	if e.dryRun {
		log.Info("dry-run: skipping mirror", "image", rec.Original.String(), "mirror", rec.Mirror.String())
		return Result{Record: rec, Outcome: OutcomeSkippedDryRun}
	}

	log.Info("mirroring image", "image", rec.Original.String(), "mirror", rec.Mirror.String(), "chart", rec.Chart)

	img, cacheDir, err := e.pull(ctx, rec)
	if err != nil {
		log.Error("pull failed", "image", rec.Original.String(), "error", err)
		return Result{Record: rec, Outcome: OutcomeFailed, Err: errors.Wrap(err, "pull")}
	}

	destRef, err := name.NewTag(rec.Mirror.String(), name.WeakValidation)
	if err != nil {
		log.Error("tag failed", "image", rec.Original.String(), "mirror", rec.Mirror.String(), "error", err)
		return Result{Record: rec, Outcome: OutcomeFailed, Err: errors.Wrap(err, "tag")}
	}

	if err := remoteWriteFunc(destRef, img, remote.WithContext(ctx), remote.WithAuthFromKeychain(e.keychain)); err != nil {
		log.Error("push failed", "mirror", rec.Mirror.String(), "error", err)
		return Result{Record: rec, Outcome: OutcomeFailed, Err: errors.Wrap(err, "push")}
	}

	// Best-effort cleanup of the local layer cache after a successful
	// push; a removal failure does not affect the mirroring outcome.
	if err := os.RemoveAll(cacheDir); err != nil {
		log.Warn("failed to remove local image cache", "dir", cacheDir, "error", err)
	}

	log.Info("mirrored image", "image", rec.Original.String(), "mirror", rec.Mirror.String())
	return Result{Record: rec, Outcome: OutcomeSucceeded}
}

// pull fetches the source image and routes its layers through a per-image
// filesystem cache so peak local disk usage stays bounded to the images
// currently in flight. Resolving the digest forces the manifest fetch, so
// unreachable or missing images fail here rather than during push.
func (e *Executor) pull(ctx context.Context, rec Record) (v1.Image, string, error) {
	srcRef, err := name.ParseReference(rec.Original.String(), name.WeakValidation)
	if err != nil {
		return nil, "", errors.Wrapf(err, "parse source %s", rec.Original)
	}

	img, err := remoteImageFunc(srcRef, remote.WithContext(ctx), remote.WithAuthFromKeychain(e.keychain))
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetch %s", rec.Original)
	}

	cacheDir := filepath.Join(e.cacheRoot, cacheKey(rec.Original.String()))
	if err := os.MkdirAll(cacheDir, 0o750); err != nil {
		return nil, "", errors.Wrap(err, "create image cache dir")
	}
	img = cache.Image(img, cache.NewFilesystemCache(cacheDir))

	if _, err := img.Digest(); err != nil {
		return nil, "", errors.Wrapf(err, "resolve digest of %s", rec.Original)
	}
	return img, cacheDir, nil
}

// cacheKey flattens a reference into a filesystem-safe directory name.
func cacheKey(ref string) string {
	return strings.NewReplacer("/", "_", ":", "_").Replace(ref)
}
