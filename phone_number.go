package omnidim

import "context"

const defaultPhonePageSize = 30

// PhoneNumberService manages the account's imported phone numbers.
type PhoneNumberService struct {
	client *Client
}

// List returns one page of phone numbers.
func (s *PhoneNumberService) List(ctx context.Context, page, pageSize int) (*Response, error) {
	page, pageSize = pageDefaults(page, pageSize, defaultPhonePageSize)
	return s.client.Get(ctx, "phone_number/list", map[string]any{"pageno": page, "pagesize": pageSize})
}

// Attach routes calls on a phone number to an agent.
func (s *PhoneNumberService) Attach(ctx context.Context, phoneNumberID, agentID int) (*Response, error) {
	if err := positiveID("phone_number_id", phoneNumberID); err != nil {
		return nil, err
	}
	if err := positiveID("agent_id", agentID); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, "phone_number/attach", map[string]any{
		"phone_number_id": phoneNumberID,
		"agent_id":        agentID,
	})
}

// Detach unbinds a phone number from whichever agent holds it.
func (s *PhoneNumberService) Detach(ctx context.Context, phoneNumberID int) (*Response, error) {
	if err := positiveID("phone_number_id", phoneNumberID); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, "phone_number/detach", map[string]any{"phone_number_id": phoneNumberID})
}
