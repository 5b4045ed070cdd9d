package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("VERCEL", "1")
	t.Setenv("PORT", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("SHIPPING_POLICY", "")
	t.Setenv("CART_SAVE_TIMEOUT", "")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "category_split", cfg.ShippingPolicy)
	assert.Equal(t, 10*time.Second, cfg.CartSaveTimeout)
	assert.Equal(t, "__session", cfg.AuthCookieName)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("VERCEL", "1")
	t.Setenv("PORT", "9000")
	t.Setenv("APP_PORT", "")
	t.Setenv("ADMIN_EMAILS", " Ops@ShopWave.in, ,boss@shopwave.in")
	t.Setenv("CART_IDLE_TTL", "90s")
	t.Setenv("CHANNEL_POOL_SIZE", "not-a-number")
	t.Setenv("APP_ENV", "production")

	cfg := LoadConfig()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"ops@shopwave.in", "boss@shopwave.in"}, cfg.AdminEmails)
	assert.Equal(t, 90*time.Second, cfg.CartIdleTTL)
	assert.Equal(t, 10, cfg.ChannelPoolSize)
	assert.True(t, cfg.IsProduction())
}
