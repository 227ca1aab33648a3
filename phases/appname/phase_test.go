package appname

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BrianJOC/env-bootstrap/phases"
)

func TestPhaseStoresLowerCasedName(t *testing.T) {
	t.Parallel()

	ctx := phases.NewContext()
	Seed(ctx, "Acme")

	require.NoError(t, New().Run(context.Background(), ctx))

	name, err := FromContext(ctx)
	require.NoError(t, err)
	require.Equal(t, "acme", name)
}

func TestPhaseRequestsName(t *testing.T) {
	t.Parallel()

	err := New().Run(context.Background(), phases.NewContext())
	var inputErr phases.InputRequestError
	require.ErrorAs(t, err, &inputErr)
	require.Equal(t, InputName, inputErr.Input.ID)
	require.Empty(t, inputErr.Reason)
}

func TestPhaseRejectsNonAlphabeticName(t *testing.T) {
	t.Parallel()

	ctx := phases.NewContext()
	Seed(ctx, "acme-2")

	err := New().Run(context.Background(), ctx)
	var inputErr phases.InputRequestError
	require.ErrorAs(t, err, &inputErr)
	require.Contains(t, inputErr.Reason, "only letters")

	_, err = FromContext(ctx)
	var valErr phases.ValidationError
	require.ErrorAs(t, err, &valErr)
}
