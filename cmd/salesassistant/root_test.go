package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoying/sales-assistant/internal/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Port:            "0",
		Env:             config.EnvDevelopment,
		ShutdownTimeout: time.Second,
		Auth:            config.AuthConfig{Username: "admin", Password: "123456", TokenTTL: time.Hour},
		Store:           config.StoreConfig{DataFile: filepath.Join(t.TempDir(), "data", "customers.json"), SeedSample: true},
		Chat: config.ChatConfig{
			Mode: config.ChatModeOpenAI, Model: "gpt-3.5-turbo", Timeout: 5 * time.Second, Workers: 1, QueueSize: 4,
		},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestBuildChatProvider(t *testing.T) {
	cfg := testConfig(t)

	assert.Equal(t, "keyword", buildChatProvider(cfg, zerolog.Nop()).Name(), "no api key falls back to keyword")

	cfg.Chat.APIKey = "sk-test"
	assert.Equal(t, "openai", buildChatProvider(cfg, zerolog.Nop()).Name())

	cfg.Chat.Mode = config.ChatModeKeyword
	assert.Equal(t, "keyword", buildChatProvider(cfg, zerolog.Nop()).Name())
}

func TestBuildApp_ServesSeededStore(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.close()

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"username":"admin","password":"123456"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = os.Stat(cfg.Store.DataFile)
	assert.NoError(t, err, "data file should be created on startup")
}

func TestSeedCommand(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "customers.json")
	t.Setenv("DATA_FILE", dataFile)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"seed"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "seeded")

	raw, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id": "cus002"`)

	out.Reset()
	rootCmd.SetArgs([]string{"seed"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "already exists")

	out.Reset()
	rootCmd.SetArgs([]string{"seed", "--force"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "seeded")
	seedForce = false
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token"})
	require.NoError(t, rootCmd.Execute())

	token := strings.TrimSpace(out.String())
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["sub"])
}

func TestRun_ReturnsErrorWhenPortInUse(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })
	port := strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)

	t.Setenv("PORT", port)
	t.Setenv("DATA_FILE", filepath.Join(t.TempDir(), "customers.json"))
	t.Setenv("CHAT_MODE", config.ChatModeKeyword)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Cleanup(func() { rootCmd.SetContext(context.Background()) })
	rootCmd.SetArgs([]string{})
	err = rootCmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), port)
	assert.NoError(t, ctx.Err(), "run should fail on its own, not wait for the deadline")
}
