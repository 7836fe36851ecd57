package devops

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	calls  int
	values map[string]string
}

func (f *fakeSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	if !aws.ToBool(params.WithDecryption) {
		return nil, errors.New("decryption required")
	}
	v, ok := f.values[aws.ToString(params.Name)]
	if !ok {
		return nil, &types.ParameterNotFound{}
	}
	if v == "" {
		return &ssm.GetParameterOutput{}, nil
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(v)}}, nil
}

func TestParameterStore(t *testing.T) {
	client := &fakeSSM{values: map[string]string{"attendance": "jwtSecret: abc", "blank": ""}}
	store := newParameterStore(client)
	ctx := context.Background()

	v, err := store.GetParameter(ctx, "attendance")
	require.NoError(t, err)
	assert.Equal(t, "jwtSecret: abc", v)

	_, err = store.GetParameter(ctx, "attendance")
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)

	_, err = store.GetParameter(ctx, "missing")
	var notFound *types.ParameterNotFound
	assert.ErrorAs(t, err, &notFound)

	_, err = store.GetParameter(ctx, "blank")
	assert.ErrorContains(t, err, "is empty")
}
