package backup

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	input := strings.Join([]string{
		"PATH=/usr/local/bin:/usr/bin",
		"POSTGRES_USER=app",
		"EMPTY=",
		"WITH_EQUALS=a=b=c",
		"BARE_KEY",
		"",
		"# comment",
		"not a valid line",
	}, "\n")

	env, err := ParseEnvironment(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin:/usr/bin", env.Get("PATH", ""))
	assert.Equal(t, "app", env.Get("POSTGRES_USER", ""))
	assert.Equal(t, "a=b=c", env.Get("WITH_EQUALS", ""))

	require.True(t, env.Has("EMPTY"))
	require.NotNil(t, env["EMPTY"])
	assert.Equal(t, "", *env["EMPTY"])

	require.True(t, env.Has("BARE_KEY"))
	assert.Nil(t, env["BARE_KEY"])

	assert.False(t, env.Has("not a valid line"))
	assert.Len(t, env, 5)
}

func TestParseEnvironment_LiteralValues(t *testing.T) {
	input := strings.Join([]string{
		"POSTGRES_USER=app$HOST_SECRET",
		"BRACED=pre${HOME}post",
		`QUOTED="double"`,
		"SINGLE=it's",
		`ESCAPED=a\nb\`,
		"COMMENT=value # not a comment",
	}, "\n")

	env, err := ParseEnvironment(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "app$HOST_SECRET", env.Get("POSTGRES_USER", ""))
	assert.Equal(t, "pre${HOME}post", env.Get("BRACED", ""))
	assert.Equal(t, `"double"`, env.Get("QUOTED", ""))
	assert.Equal(t, "it's", env.Get("SINGLE", ""))
	assert.Equal(t, `a\nb\`, env.Get("ESCAPED", ""))
	assert.Equal(t, "value # not a comment", env.Get("COMMENT", ""))
}

func TestParseEnvironment_Empty(t *testing.T) {
	env, err := ParseEnvironment(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestEnvironment_Get(t *testing.T) {
	env := Environment{
		"SET":       strPtr("value"),
		"EMPTY":     strPtr(""),
		"VALUELESS": nil,
	}

	assert.Equal(t, "value", env.Get("SET", "fallback"))
	assert.Equal(t, "fallback", env.Get("EMPTY", "fallback"))
	assert.Equal(t, "fallback", env.Get("VALUELESS", "fallback"))
	assert.Equal(t, "fallback", env.Get("MISSING", "fallback"))

	assert.True(t, env.Has("VALUELESS"))
	assert.False(t, env.Has("MISSING"))
}

func TestReadEnvironment(t *testing.T) {
	rt := newFakeRuntime()
	rt.env["abc"] = "POSTGRES_USER=admin\nHOME=/root\n"

	env, err := ReadEnvironment(context.Background(), rt, "abc")
	require.NoError(t, err)
	assert.Equal(t, "admin", env.Get("POSTGRES_USER", ""))
	assert.Equal(t, []string{"abc:env"}, rt.calls())
}

func TestReadEnvironment_NonZeroExit(t *testing.T) {
	rt := newFakeRuntime()
	rt.envExit["abc"] = 127

	_, err := ReadEnvironment(context.Background(), rt, "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit code 127")
	assert.Contains(t, err.Error(), "env: not found")
}
