package devops

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type ssmAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ParameterStore reads decrypted SSM parameters and caches them for the
// lifetime of the process, which for a Lambda is one warm container.
type ParameterStore struct {
	client ssmAPI

	mu    sync.Mutex
	cache map[string]string
}

func NewParameterStore(ctx context.Context) (*ParameterStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newParameterStore(ssm.NewFromConfig(cfg)), nil
}

func newParameterStore(client ssmAPI) *ParameterStore {
	return &ParameterStore{client: client, cache: map[string]string{}}
}

func (p *ParameterStore) GetParameter(ctx context.Context, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.cache[name]; ok {
		return v, nil
	}

	out, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s is empty", name)
	}

	p.cache[name] = *out.Parameter.Value
	return *out.Parameter.Value, nil
}
