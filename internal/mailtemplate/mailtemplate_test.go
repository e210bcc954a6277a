package mailtemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(EngineConfig{})
	require.NoError(t, err)
	return engine
}

func TestEngine_Render(t *testing.T) {
	engine := newTestEngine(t)

	baseContext := model.NotificationContext{
		model.ContextKeyPartnerName: "Atelier Dupont",
		model.ContextKeyContactName: "Marie Dupont",
	}

	t.Run("welcome", func(t *testing.T) {
		msg, err := engine.Render(model.KindPartnerWelcome, baseContext)
		require.NoError(t, err)
		assert.Equal(t, "Bienvenue sur Vitrine", msg.Subject)
		assert.Contains(t, msg.HTML, "Atelier Dupont")
		assert.Contains(t, msg.HTML, "Marie Dupont")
	})

	t.Run("approved", func(t *testing.T) {
		msg, err := engine.Render(model.KindPartnerApproved, baseContext)
		require.NoError(t, err)
		assert.Equal(t, "Votre compte partenaire est approuvé", msg.Subject)
		assert.Contains(t, msg.HTML, "approuvé")
		assert.Contains(t, msg.HTML, "Atelier Dupont")
	})

	t.Run("rejected includes reason", func(t *testing.T) {
		ctx := model.NotificationContext{
			model.ContextKeyPartnerName: "Atelier Dupont",
			model.ContextKeyReason:      "Documents incomplets",
		}

		msg, err := engine.Render(model.KindPartnerRejected, ctx)
		require.NoError(t, err)
		assert.Equal(t, "Votre candidature partenaire", msg.Subject)
		assert.Contains(t, msg.HTML, "Documents incomplets")
	})

	t.Run("rejected without reason omits the motif line", func(t *testing.T) {
		msg, err := engine.Render(model.KindPartnerRejected, model.NotificationContext{
			model.ContextKeyPartnerName: "Atelier Dupont",
		})
		require.NoError(t, err)
		assert.NotContains(t, msg.HTML, "Motif")
	})

	t.Run("unknown kind fails loudly", func(t *testing.T) {
		_, err := engine.Render("partner-birthday", baseContext)
		require.Error(t, err)
		assert.True(t, apperrors.IsTemplateNotFound(err))
	})

	t.Run("rendering is deterministic", func(t *testing.T) {
		first, err := engine.Render(model.KindPartnerWelcome, baseContext)
		require.NoError(t, err)
		second, err := engine.Render(model.KindPartnerWelcome, baseContext)
		require.NoError(t, err)
		assert.Equal(t, first.HTML, second.HTML)
	})

	t.Run("context values are escaped", func(t *testing.T) {
		msg, err := engine.Render(model.KindPartnerWelcome, model.NotificationContext{
			model.ContextKeyPartnerName: "<script>alert(1)</script>",
		})
		require.NoError(t, err)
		assert.NotContains(t, msg.HTML, "<script>")
	})
}
