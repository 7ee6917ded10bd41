package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/everFinance/arname/schema"
	"gopkg.in/h2non/gentleman.v2"
)

type ArnameCli struct {
	SCli *gentleman.Client
}

func New(arnameUrl string) *ArnameCli {
	return &ArnameCli{
		SCli: gentleman.New().URL(arnameUrl),
	}
}

// respError decodes the service error body when there is one.
func respError(res *gentleman.Response) error {
	e := schema.RespErr{}
	if err := json.Unmarshal(res.Bytes(), &e); err == nil && e.Err != "" {
		return fmt.Errorf("resp failed: http code: %d, errMsg: %s", res.StatusCode, e.Err)
	}
	return fmt.Errorf("resp failed: http code: %d, errMsg: %s", res.StatusCode, res.String())
}

func (a *ArnameCli) get(path string, query url.Values, out interface{}) error {
	req := a.SCli.Get()
	req.Path(path)
	for k, vs := range query {
		for _, v := range vs {
			req.AddQuery(k, v)
		}
	}
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return respError(resp)
	}
	return resp.JSON(out)
}

func (a *ArnameCli) post(path string, body interface{}, out interface{}) error {
	by, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req := a.SCli.Post()
	req.Path(path)
	req.SetHeader("Content-Type", "application/json")
	req.Body(bytes.NewReader(by))
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return respError(resp)
	}
	return resp.JSON(out)
}

func pageValues(startAfter string, limit uint32) url.Values {
	q := url.Values{}
	if startAfter != "" {
		q.Set("start_after", startAfter)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	return q
}

func (a *ArnameCli) SubmitTx(stx schema.SignedTx) (*schema.TxResult, error) {
	res := &schema.TxResult{}
	err := a.post("/tx", stx, res)
	return res, err
}

// Query runs a raw smart query; out receives the contract's answer.
func (a *ArnameCli) Query(contract string, msg, out interface{}) error {
	by, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return a.post(fmt.Sprintf("/query/%s", contract), schema.ReqQuery{Msg: by}, out)
}

func (a *ArnameCli) GetInfo() (schema.RespInfo, error) {
	info := schema.RespInfo{}
	err := a.get("/info", nil, &info)
	return info, err
}

func (a *ArnameCli) GetAccount(addr string) (schema.RespAccount, error) {
	acc := schema.RespAccount{}
	err := a.get(fmt.Sprintf("/account/%s", addr), nil, &acc)
	return acc, err
}

func (a *ArnameCli) GetBalance(addr string) (schema.RespBalance, error) {
	bal := schema.RespBalance{}
	err := a.get(fmt.Sprintf("/balance/%s", addr), nil, &bal)
	return bal, err
}

func (a *ArnameCli) GetTxs(sender string, cursor uint, limit uint32) ([]schema.TxRecord, error) {
	q := pageValues("", limit)
	if cursor > 0 {
		q.Set("cursor", fmt.Sprintf("%d", cursor))
	}
	res := schema.RespTxs{}
	err := a.get(fmt.Sprintf("/txs/%s", sender), q, &res)
	return res.Txs, err
}

func (a *ArnameCli) GetTx(hash string) (schema.TxRecord, error) {
	rec := schema.TxRecord{}
	err := a.get(fmt.Sprintf("/tx/%s", hash), nil, &rec)
	return rec, err
}

// registrar

func (a *ArnameCli) GetRegistrarConfig() (schema.RegistrarConfig, error) {
	cfg := schema.RegistrarConfig{}
	err := a.get("/registrar/config", nil, &cfg)
	return cfg, err
}

func (a *ArnameCli) GetPrices() ([]schema.PriceEntry, error) {
	res := schema.PricesResponse{}
	err := a.get("/registrar/prices", nil, &res)
	return res.Prices, err
}

func (a *ArnameCli) GetVerifier() (schema.Verifier, error) {
	v := schema.Verifier{}
	err := a.get("/registrar/verifier", nil, &v)
	return v, err
}

func (a *ArnameCli) HasRegister(name string) (bool, error) {
	res := schema.BoolResponse{}
	err := a.get(fmt.Sprintf("/registrar/has/%s", name), nil, &res)
	return res.Value, err
}

func (a *ArnameCli) GetRegistration(name string) (schema.RegistrationResponse, error) {
	res := schema.RegistrationResponse{}
	err := a.get(fmt.Sprintf("/registrar/registration/%s", name), nil, &res)
	return res, err
}

func (a *ArnameCli) GetRegistrations(startAfter string, limit uint32) ([]schema.RegistrationResponse, error) {
	res := schema.RegistrationsResponse{}
	err := a.get("/registrar/registrations", pageValues(startAfter, limit), &res)
	return res.Registrations, err
}

func (a *ArnameCli) GetFee(name string, durations uint64) (schema.Coin, error) {
	fee := schema.Coin{}
	err := a.get(fmt.Sprintf("/registrar/fee/%s/%d", name, durations), nil, &fee)
	return fee, err
}

func (a *ArnameCli) GetExpired() (schema.RespExpired, error) {
	res := schema.RespExpired{}
	err := a.get("/registrar/expired", nil, &res)
	return res, err
}

// resolver

func (a *ArnameCli) AddressOf(name, prefix string) (string, error) {
	res := schema.ResolvedAddress{}
	err := a.get(fmt.Sprintf("/resolver/address/%s/%s", name, prefix), nil, &res)
	return res.Address, err
}

func (a *ArnameCli) AllAddressesOf(name, startAfter string, limit uint32) ([]schema.ResolvedAddress, error) {
	res := schema.AllAddressesResponse{}
	err := a.get(fmt.Sprintf("/resolver/addresses/%s", name), pageValues(startAfter, limit), &res)
	return res.Addresses, err
}

func (a *ArnameCli) NamesOf(owner, startAfter string, limit uint32) ([]string, error) {
	res := schema.NamesResponse{}
	err := a.get(fmt.Sprintf("/resolver/names/%s", owner), pageValues(startAfter, limit), &res)
	return res.Names, err
}

// name tokens

func (a *ArnameCli) GetToken(tokenId string) (schema.AllNftInfoResponse, error) {
	res := schema.AllNftInfoResponse{}
	err := a.get(fmt.Sprintf("/token/%s", tokenId), nil, &res)
	return res, err
}

func (a *ArnameCli) GetTokens(owner, startAfter string, limit uint32) ([]string, error) {
	res := schema.TokensResponse{}
	err := a.get(fmt.Sprintf("/tokens/%s", owner), pageValues(startAfter, limit), &res)
	return res.Tokens, err
}
