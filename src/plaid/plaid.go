package plaid

import (
	"context"
	"fmt"
	"time"

	"finsight-server/src/recurring"

	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"
)

func NewPlaidClient(clientID, secret, env string) (*plaid.APIClient, error) {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		return nil, fmt.Errorf("invalid Plaid environment: %s", env)
	}

	return plaid.NewAPIClient(configuration), nil
}

// RecurringProvider fetches the recurring streams Plaid has detected for an item.
type RecurringProvider struct {
	client *plaid.APIClient
}

func NewRecurringProvider(client *plaid.APIClient) *RecurringProvider {
	return &RecurringProvider{client: client}
}

// FetchStreams returns inflow and outflow streams in Plaid's sign convention.
func (p *RecurringProvider) FetchStreams(ctx context.Context, accessToken string) ([]recurring.StreamInput, error) {
	request := plaid.NewTransactionsRecurringGetRequest(accessToken)
	resp, _, err := p.client.PlaidApi.TransactionsRecurringGet(ctx).TransactionsRecurringGetRequest(*request).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recurring transactions: %w", err)
	}

	streams := append(resp.GetInflowStreams(), resp.GetOutflowStreams()...)
	inputs := make([]recurring.StreamInput, 0, len(streams))
	for _, s := range streams {
		inputs = append(inputs, streamInput(s))
	}
	return inputs, nil
}

func streamInput(s plaid.TransactionStream) recurring.StreamInput {
	pfc := s.GetPersonalFinanceCategory()
	return recurring.StreamInput{
		StreamID:          s.GetStreamId(),
		ExternalAccountID: s.GetAccountId(),
		Description:       s.GetDescription(),
		MerchantName:      s.GetMerchantName(),
		Frequency:         string(s.GetFrequency()),
		AverageAmount:     amount(s.GetAverageAmount()),
		LastAmount:        amount(s.GetLastAmount()),
		LastDate:          parseDate(s.GetLastDate()),
		IsActive:          s.GetIsActive(),
		PrimaryCategory:   pfc.GetPrimary(),
		DetailedCategory:  pfc.GetDetailed(),
	}
}

func amount(a plaid.TransactionStreamAmount) decimal.Decimal {
	return decimal.NewFromFloat(a.GetAmount()).Round(2)
}

// Plaid dates are YYYY-MM-DD; an unparseable date leaves the zero time.
func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
