// Package omnidim is a client for the OmniDimension voice agent REST API.
//
// A Client holds the API key and base URL and exposes one service per
// resource family:
//
//	client, err := omnidim.NewClient(os.Getenv("OMNIDIM_API_KEY"))
//	if err != nil {
//		return err
//	}
//	resp, err := client.Agent.List(ctx, 1, 30)
//
// Every call returns a *Response holding the HTTP status and the decoded
// JSON body. Failures are one of *ConfigurationError, *ValidationError or
// *APIError; input is validated locally and a *ValidationError never
// reaches the network.
package omnidim
