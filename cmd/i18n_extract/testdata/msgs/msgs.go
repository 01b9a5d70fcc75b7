package msgs

import (
	"context"

	"codeberg.org/plae/plae/i18n"
)

const saved = "Saved"

type row struct {
	label i18n.MsgKey
	value string
}

var rows = []row{
	{label: "Version", value: "v1"},
}

func title(t i18n.MsgKey) string { return string(t) }

func messages(ctx context.Context, n int) []string {
	return []string{
		i18n.Tr(ctx, saved),
		i18n.Tr(ctx, "Field {{.Index}}", "Index", n),
		i18n.Tr(ctx, "Field {{.Index}}", "Count", n),
		i18n.TrN(ctx, "{{.Count}} field", "{{.Count}} fields", n, "Count", n),
		i18n.NewUserError(ctx, "Odd {{.Body}}", "Body").Error(),
		title("About"),
		string(i18n.MsgKey("Converted")),
		rows[0].value,
	}
}
