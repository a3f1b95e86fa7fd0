package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name         string
		organization string
		pat          string
		wantErr      bool
	}{
		{
			name:         "valid configuration",
			organization: "innovacion",
			pat:          "secret-pat",
			wantErr:      false,
		},
		{
			name:    "missing organization and pat",
			wantErr: true,
		},
		{
			name:         "missing pat",
			organization: "innovacion",
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AZURE_ORGANIZATION", tt.organization)
			t.Setenv("AZURE_PAT", tt.pat)

			config, err := LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.organization, config.Azure.Organization)
			assert.Equal(t, tt.pat, config.Azure.PAT)
			// defaults
			assert.Equal(t, "Mildred Moreno", config.Timesheet.DefaultUser)
			assert.Equal(t, "data", config.Timesheet.ExcelDir)
			assert.Equal(t, "tracking", config.Timesheet.TrackingDir)
		})
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AZURE_ORGANIZATION", "innovacion")
	t.Setenv("AZURE_PAT", "secret-pat")
	t.Setenv("TIMESHEET_USER", "Otra Persona")
	t.Setenv("EXCEL_PATH", "/srv/exports")
	t.Setenv("USUARIOS_VALIDOS_HABILITADOR", "Mildred Moreno, Juan Perez ,,")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "Otra Persona", config.Timesheet.DefaultUser)
	assert.Equal(t, "/srv/exports", config.Timesheet.ExcelDir)
	assert.Equal(t, []string{"Mildred Moreno", "Juan Perez"}, config.Timesheet.EnablerUsers)
}

func TestEncodedPAT(t *testing.T) {
	cfg := AzureConfig{PAT: "abc123"}
	// base64 of ":abc123"
	assert.Equal(t, "OmFiYzEyMw==", cfg.EncodedPAT())
}

func TestValidateGmailConfig(t *testing.T) {
	err := ValidateGmailConfig(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMAIL_GMAIL")

	err = ValidateGmailConfig(&Config{Gmail: GmailConfig{Account: "a@gmail.com", Password: "app-pass"}})
	assert.NoError(t, err)
}
