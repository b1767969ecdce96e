package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema(t *testing.T) {
	root := &cobra.Command{Use: "portald", Short: "root"}
	root.AddCommand(ServeCmd())
	root.AddCommand(SweepCmd())

	schema := GenerateSchema(root)
	assert.Equal(t, "portald", schema.Name)
	require.Len(t, schema.Subcommands, 2)

	var serve CommandSchema
	for _, sub := range schema.Subcommands {
		if sub.Name == "serve" {
			serve = sub
		}
	}
	require.NotEmpty(t, serve.Name)
	require.Len(t, serve.Flags, 1)
	assert.Equal(t, "port", serve.Flags[0].Name)
	assert.Equal(t, "p", serve.Flags[0].Shorthand)
	assert.Equal(t, "8080", serve.Flags[0].Default)
}
