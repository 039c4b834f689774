package kiwoom

import (
	"context"
	"fmt"

	"github.com/wonny/scout/internal/contracts"
)

const pathOrder = "/api/dostk/ordr"

// Execute places a cash order. Implements contracts.OrderExecutor for live
// trading; paper mode never reaches this code.
func (c *Client) Execute(ctx context.Context, order contracts.Order) error {
	apiID := "kt10000" // 매수
	if order.Side == contracts.SignalSell {
		apiID = "kt10001" // 매도
	}

	payload := map[string]string{
		"dmst_stex_tp": "KRX",
		"stk_cd":       order.Code,
		"ord_qty":      fmt.Sprintf("%d", order.Quantity),
		"ord_uv":       fmt.Sprintf("%d", order.Price),
		"trde_tp":      "0", // 지정가
	}

	resp, err := c.request(ctx, pathOrder, apiID, payload)
	if err != nil {
		return fmt.Errorf("order request: %w", err)
	}

	var result struct {
		OrderNo string `json:"ord_no"`
	}
	if err := decode(resp, &result); err != nil {
		return err
	}
	if result.OrderNo == "" {
		return fmt.Errorf("order for %s rejected: empty order number", order.Code)
	}

	c.logger.WithFields(map[string]interface{}{
		"code":     order.Code,
		"side":     order.Side,
		"quantity": order.Quantity,
		"price":    order.Price,
		"order_no": result.OrderNo,
	}).Info("Order placed")

	return nil
}
