package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	gslug "github.com/gosimple/slug"
)

// slugExistsFunc cek apakah slug sudah dipakai entitas lain.
type slugExistsFunc func(ctx context.Context, slug string) (bool, error)

const maxSlugProbes = 50

// ensureUniqueSlug: slugify nama, lalu probe base, base-2, base-3, ...
// sampai ketemu yang kosong. Lewat 50 percobaan (katalog dengan nama
// kembar segitu banyak praktis nggak ada) fallback ke suffix acak.
func ensureUniqueSlug(ctx context.Context, name string, exists slugExistsFunc) (string, error) {
	base := gslug.Make(name)
	if base == "" {
		base = "item"
	}

	candidate := base
	for i := 2; i <= maxSlugProbes; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}
