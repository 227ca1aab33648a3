package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlpha(t *testing.T) {
	t.Parallel()

	require.NoError(t, Alpha("dev"))
	require.NoError(t, Alpha("Staging"))

	for _, bad := range []string{"", "dev-1", "dev1", "dév", "d ev"} {
		err := Alpha(bad)
		require.Error(t, err, bad)
		require.ErrorIs(t, err, ErrInvalidFormat)
	}
}

func TestDomainName(t *testing.T) {
	t.Parallel()

	for _, good := range []string{"localhost", "shop.localhost", "qa.shop.com", "my-app.example.org", "a1.b2"} {
		require.NoError(t, DomainName(good), good)
	}

	bad := []string{
		"",
		"shop..com",
		".shop.com",
		"shop.com.",
		"-shop.com",
		"shop-.com",
		"sh_op.com",
		"shop com",
		strings.Repeat("a", 64) + ".com",
		strings.Repeat("abcdefghi.", 26),
	}
	for _, candidate := range bad {
		err := DomainName(candidate)
		require.Error(t, err, candidate)
		require.ErrorIs(t, err, ErrInvalidFormat)
	}
}

func TestUnique(t *testing.T) {
	t.Parallel()

	exists := func(s string) bool { return s == "dev" }
	v := Unique(exists, "Environment %q does already exist!")

	require.NoError(t, v("prod"))

	err := v("dev")
	require.ErrorIs(t, err, ErrDuplicateValue)
	require.EqualError(t, err, `Environment "dev" does already exist!`)

	var dupErr DuplicateError
	require.True(t, errors.As(err, &dupErr))
	require.Equal(t, "dev", dupErr.Value)
}

func TestUniqueWithoutTemplate(t *testing.T) {
	t.Parallel()

	err := Unique(func(string) bool { return true }, "")("x")
	require.EqualError(t, err, `"x" already exists`)
}

func TestMergeShortCircuits(t *testing.T) {
	t.Parallel()

	existsCalls := 0
	exists := func(s string) bool {
		existsCalls++
		return s == "dev"
	}
	v := Merge(Alpha, Unique(exists, "Environment %q does already exist!"))

	err := v("dev-1")
	require.ErrorIs(t, err, ErrInvalidFormat)
	require.Zero(t, existsCalls)

	err = v("dev")
	require.ErrorIs(t, err, ErrDuplicateValue)
	require.Equal(t, 1, existsCalls)

	require.NoError(t, v("prod"))
}

func TestMergeOrderDoesNotChangeOutcome(t *testing.T) {
	t.Parallel()

	exists := func(s string) bool { return s == "dev" }
	forward := Merge(Alpha, Unique(exists, ""))
	reverse := Merge(Unique(exists, ""), Alpha)

	for _, candidate := range []string{"dev", "dev-1", "prod", "", "qa"} {
		require.Equal(t, forward(candidate) == nil, reverse(candidate) == nil, candidate)
	}
}

func TestNotEmpty(t *testing.T) {
	t.Parallel()

	require.NoError(t, NotEmpty("x"))
	require.ErrorIs(t, NotEmpty("   "), ErrInvalidFormat)
}

func TestImageReference(t *testing.T) {
	t.Parallel()

	require.NoError(t, ImageReference("registry.example.com/team/app:1.2"))
	require.ErrorIs(t, ImageReference(""), ErrInvalidFormat)
	require.ErrorIs(t, ImageReference("my image"), ErrInvalidFormat)
}
