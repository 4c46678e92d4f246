package auth

import (
	"context"
	"fmt"

	"bloodaid/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// CognitoAuthenticator proves email+password against a Cognito user pool.
type CognitoAuthenticator struct {
	client   *cognitoidentityprovider.Client
	clientID string
}

func NewCognitoAuthenticator(client *cognitoidentityprovider.Client, clientID string) *CognitoAuthenticator {
	return &CognitoAuthenticator{client: client, clientID: clientID}
}

func (a *CognitoAuthenticator) Authenticate(ctx context.Context, email, password string) error {
	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(a.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	}

	resp, err := a.client.InitiateAuth(ctx, input)
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		return fmt.Errorf("%w: %s", types.ErrUnauthenticated, "invalid credentials")
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		return types.ErrUnauthenticated
	}

	return nil
}
