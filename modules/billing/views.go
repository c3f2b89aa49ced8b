package billing

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/mpsubs/pkg/subscription"
	"github.com/dmitrymomot/mpsubs/pkg/validator"
)

// formState carries submitted values back into a re-rendered form.
type formState struct {
	Name   string
	Email  string
	PlanID subscription.PlanID
	Errors validator.Errors
}

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="pt-BR"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+`</title></head><body><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func indexPage(plans []subscription.Plan, form formState) templ.Component {
	return layout("Assinaturas", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<h1>Escolha seu plano</h1>`)
		if len(plans) == 0 {
			b.WriteString(`<p>Nenhum plano disponível no momento.</p>`)
		} else {
			b.WriteString(`<ul class="plans">`)
			for _, p := range plans {
				b.WriteString(`<li><strong>` + templ.EscapeString(p.Name) + `</strong> `)
				b.WriteString(templ.EscapeString(formatPrice(p.Price)) + ` `)
				b.WriteString(`<span>(` + templ.EscapeString(formatInterval(p.IntervalMonths)) + `)</span></li>`)
			}
			b.WriteString(`</ul>`)
		}

		b.WriteString(`<form method="post" action="` + PathIndex + `">`)
		field(&b, subscription.FieldName, "Nome", "text", form.Name, form.Errors)
		field(&b, subscription.FieldEmail, "E-mail", "email", form.Email, form.Errors)

		b.WriteString(`<label for="plano_id">Plano</label><select id="plano_id" name="plano_id" required>`)
		for _, p := range plans {
			selected := ""
			if p.ID == form.PlanID {
				selected = ` selected`
			}
			b.WriteString(`<option value="` + p.ID.String() + `"` + selected + `>` +
				templ.EscapeString(p.Name+" - "+formatPrice(p.Price)) + `</option>`)
		}
		b.WriteString(`</select><button type="submit">Assinar</button></form>`)

		_, err := io.WriteString(w, b.String())
		return err
	}))
}

func field(b *strings.Builder, name, label, typ, value string, errs validator.Errors) {
	b.WriteString(`<label for="` + name + `">` + label + `</label>`)
	b.WriteString(`<input id="` + name + `" name="` + name + `" type="` + typ +
		`" maxlength="100" required value="` + templ.EscapeString(value) + `">`)
	if msg := errs.Get(name); msg != "" {
		b.WriteString(`<p class="error" data-field="` + name + `">` + templ.EscapeString(msg) + `</p>`)
	}
}

func successPage() templ.Component {
	return layout("Pagamento recebido", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<h1>Deu tudo certo</h1><p>Sua assinatura será ativada assim que o pagamento for confirmado.</p>`)
		return err
	}))
}
