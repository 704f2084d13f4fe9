package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterReader is the subset of the SSM client used to resolve secrets.
type ParameterReader interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveSecrets fills AuthSecret from SSM Parameter Store when AUTH_SECRET_SSM_PARAM is set.
// A nil reader builds a client from the default AWS credential chain.
func (c *Config) ResolveSecrets(ctx context.Context, reader ParameterReader) error {
	if c.AuthSecretSSMParam != "" {
		if reader == nil {
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return fmt.Errorf("load aws config: %w", err)
			}
			reader = ssm.NewFromConfig(awsCfg)
		}

		out, err := reader.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(c.AuthSecretSSMParam),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return fmt.Errorf("read ssm parameter %s: %w", c.AuthSecretSSMParam, err)
		}
		if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
			return fmt.Errorf("ssm parameter %s is empty", c.AuthSecretSSMParam)
		}
		c.AuthSecret = aws.ToString(out.Parameter.Value)
	}

	if c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET or AUTH_SECRET_SSM_PARAM must be set")
	}
	return nil
}
