package config

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// SSMAPI is the slice of *ssm.Client needed to load parameters.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

var _ SSMAPI = (*ssm.Client)(nil)

// LoadEmailBlocklist reads the comma-separated blocklist parameter at
// cold start. A missing parameter means an empty blocklist.
func LoadEmailBlocklist(ctx context.Context, client SSMAPI, name string) ([]string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name: aws.String(name),
	})
	if err != nil {
		var nf *ssmtypes.ParameterNotFound
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, nil
	}

	var list []string
	for _, addr := range strings.Split(*out.Parameter.Value, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			list = append(list, addr)
		}
	}
	return list, nil
}
