// Package wechat is a thin client for the WeChat mini-program APIs the
// service depends on: code2session login and cloud-hosted unified-order
// payment, plus the MD5 parameter signature used on payment callbacks.
package wechat

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/xinghui/parlor/internal/config"
	"github.com/xinghui/parlor/internal/models"
)

// Gateway is what the services consume; the concrete Client talks to
// the real WeChat endpoints and tests substitute their own.
type Gateway interface {
	Code2Session(ctx context.Context, code string) (*SessionInfo, error)
	UnifiedOrder(ctx context.Context, req *UnifiedOrderRequest) (*PaymentParams, error)
	VerifyCallback(params map[string]string, signature string) bool
}

type Client struct {
	appID        string
	appSecret    string
	mchID        string
	mchKey       string
	apiBase      string
	callbackPath string
	httpClient   *http.Client
}

func NewClient(cfg *config.Config) *Client {
	callbackPath := "/api/v1/payment/callback"
	if u, err := url.Parse(cfg.CallbackURL); err == nil && u.Path != "" {
		callbackPath = u.Path
	}
	return &Client{
		appID:        cfg.WechatAppID,
		appSecret:    cfg.WechatAppSecret,
		mchID:        cfg.WechatMchID,
		mchKey:       cfg.WechatMchKey,
		apiBase:      strings.TrimRight(cfg.WechatAPIBase, "/"),
		callbackPath: callbackPath,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SessionInfo is the result of exchanging a mini-program login code.
type SessionInfo struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// Code2Session exchanges a login code for the user's open id.
func (c *Client) Code2Session(ctx context.Context, code string) (*SessionInfo, error) {
	q := url.Values{}
	q.Set("appid", c.appID)
	q.Set("secret", c.appSecret)
	q.Set("js_code", code)
	q.Set("grant_type", "authorization_code")

	endpoint := fmt.Sprintf("%s/sns/jscode2session?%s", c.apiBase, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build code2session request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("code2session request failed: %w", models.ErrGateway)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("code2session returned status %d: %w", resp.StatusCode, models.ErrGateway)
	}

	var info SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode code2session response: %w", models.ErrGateway)
	}
	if info.ErrCode != 0 {
		return nil, fmt.Errorf("code2session error %d: %s: %w", info.ErrCode, info.ErrMsg, models.ErrGateway)
	}
	if info.OpenID == "" {
		return nil, fmt.Errorf("code2session response missing openid: %w", models.ErrGateway)
	}
	return &info, nil
}

// UnifiedOrderRequest describes one payment to place with the gateway.
type UnifiedOrderRequest struct {
	OpenID     string
	TradeNo    string
	Body       string
	TotalFee   int64
	ClientIP   string
	CloudEnvID string
	Service    string
}

// PaymentParams is what the mini-program needs to invoke payment.
type PaymentParams struct {
	PrepayID  string `json:"prepay_id"`
	Package   string `json:"package"`
	NonceStr  string `json:"nonceStr"`
	TimeStamp string `json:"timeStamp"`
	SignType  string `json:"signType"`
	PaySign   string `json:"paySign"`
}

type unifiedOrderResponse struct {
	ErrCode  int    `json:"errcode"`
	ErrMsg   string `json:"errmsg"`
	RespData struct {
		Payment PaymentParams `json:"payment"`
	} `json:"respdata"`
}

// UnifiedOrder places an order with the cloud-hosted pay API and
// returns the payment parameters, prepay id extracted from the package
// field.
func (c *Client) UnifiedOrder(ctx context.Context, order *UnifiedOrderRequest) (*PaymentParams, error) {
	payload := map[string]interface{}{
		"openid":           order.OpenID,
		"body":             order.Body,
		"out_trade_no":     order.TradeNo,
		"total_fee":        order.TotalFee,
		"spbill_create_ip": order.ClientIP,
		"sub_mch_id":       c.mchID,
		"env_id":           order.CloudEnvID,
		"callback_type":    2,
		"container": map[string]string{
			"service": order.Service,
			"path":    c.callbackPath,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode unified order: %w", err)
	}

	endpoint := c.apiBase + "/_/pay/unifiedOrder"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build unified order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unified order request failed: %w", models.ErrGateway)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unified order returned status %d: %w", resp.StatusCode, models.ErrGateway)
	}

	var result unifiedOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode unified order response: %w", models.ErrGateway)
	}
	if result.ErrCode != 0 {
		return nil, fmt.Errorf("unified order error %d: %s: %w", result.ErrCode, result.ErrMsg, models.ErrGateway)
	}

	params := result.RespData.Payment
	if prepay, ok := strings.CutPrefix(params.Package, "prepay_id="); ok {
		params.PrepayID = prepay
	}
	return &params, nil
}

// Sign computes the MD5 parameter signature: non-empty params sorted by
// key, joined as k=v pairs with &, with the merchant key appended.
func (c *Client) Sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" || k == "sign" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
		sb.WriteByte('&')
	}
	sb.WriteString("key=")
	sb.WriteString(c.mchKey)

	sum := md5.Sum([]byte(sb.String()))
	return strings.ToUpper(fmt.Sprintf("%x", sum))
}

// VerifyCallback checks a callback's signature against the merchant key.
func (c *Client) VerifyCallback(params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	want := c.Sign(params)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToUpper(signature))) == 1
}
