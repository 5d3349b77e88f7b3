package source

import (
	"context"

	git "github.com/go-git/go-git/v5"

	"github.com/matzehuels/cratemap/pkg/errors"
)

// Clone performs a shallow clone of url into dir. Manifest parsing only
// needs the tip of the default branch, so history is not fetched.
func Clone(ctx context.Context, url, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeSourceUnavailable, err, "clone %s", url)
	}
	return nil
}
