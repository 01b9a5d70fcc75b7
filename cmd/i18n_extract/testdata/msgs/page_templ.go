package msgs

import (
	"context"

	"codeberg.org/plae/plae/i18n"
)

func page(ctx context.Context) string {
	return i18n.Tr(ctx, "From a template")
}
