package settlement

import "encoding/json"

// Gateway endpoints (SIT paths).
const (
	disburseEndpoint   = "/transfer/v2.3/disbursement"
	createLinkEndpoint = "/payment/v2.3/h5/createLink"
)

// DisbursementRequest asks the gateway to pay out merchant funds to a
// bank account. Amount is in minor units.
type DisbursementRequest struct {
	Amount      int64
	BankCode    string
	AccountNo   string
	AccountName string
}

// DisbursementResult is the success payload mapped from the gateway.
type DisbursementResult struct {
	RequestNo      string          `json:"request_no"`
	Status         string          `json:"status"`
	SettlementTime string          `json:"settlement_time"`
	Raw            json.RawMessage `json:"raw,omitempty"`
}

// disburseWire is the signed request body. The gateway wants amounts as
// double-precision strings ("50000.00").
type disburseWire struct {
	MerchantID  string `json:"merchantId"`
	RequestNo   string `json:"requestNo"`
	Amount      string `json:"amount"`
	BankCode    string `json:"bankCode"`
	AccountNo   string `json:"accountNo"`
	AccountName string `json:"accountName"`
}

type createLinkWire struct {
	MerchantID      string `json:"merchantId"`
	MerchantTradeNo string `json:"merchantTradeNo"`
	RequestID       string `json:"requestId"`
	Amount          string `json:"amount"`
	ProductName     string `json:"productName"`
	PhoneNumber     string `json:"phoneNumber"`
	RedirectURL     string `json:"redirectUrl"`
	Lang            string `json:"lang"`
}

// gatewayWire is the common response envelope.
type gatewayWire struct {
	ErrCode        string `json:"errCode"`
	ErrCodeDes     string `json:"errCodeDes"`
	RequestNo      string `json:"requestNo"`
	Status         string `json:"status"`
	SettlementTime string `json:"settlementTime"`
	URL            string `json:"url"`
}
