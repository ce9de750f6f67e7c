package hashlinks

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaHandler adapts d to API Gateway HTTP API (payload version 2.0) events.
// The short ID is read from the "id" path parameter.
func LambdaHandler(d *Dispatcher) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp := d.Dispatch(ctx, Request{
			Method:          event.RequestContext.HTTP.Method,
			ID:              event.PathParameters["id"],
			Body:            event.Body,
			IsBase64Encoded: event.IsBase64Encoded,
		})

		headers := map[string]string{"Content-Type": resp.ContentType}
		if resp.Location != "" {
			headers["Location"] = resp.Location
		}

		return events.APIGatewayV2HTTPResponse{
			StatusCode:      resp.StatusCode,
			Headers:         headers,
			Body:            resp.Body,
			IsBase64Encoded: false,
		}, nil
	}
}
