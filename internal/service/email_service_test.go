package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/atelier-next/internal/config"
	"github.com/atelier-next/internal/constants"
)

func TestBuildOrderStatusContent(t *testing.T) {
	subject, body := buildOrderStatusContent(OrderStatusEmailInput{
		OrderNo:      "AT20260310001",
		Status:       constants.OrderStatusReturnStoreCredit,
		CustomerName: "Asha Rao",
	})
	if !strings.Contains(subject, "AT20260310001") {
		t.Fatalf("subject should carry the order number: %q", subject)
	}
	if !strings.Contains(body, "store credit") {
		t.Fatalf("return notification should mention store credit: %q", body)
	}
	if !strings.Contains(body, "Asha Rao") {
		t.Fatalf("body should address the customer: %q", body)
	}

	_, body = buildOrderStatusContent(OrderStatusEmailInput{
		OrderNo: "AT1",
		Status:  constants.OrderStatusDelivered,
	})
	if !strings.Contains(body, "72 hours") {
		t.Fatalf("delivery notification should mention the post-delivery window: %q", body)
	}
	if !strings.Contains(body, "Dear Customer") {
		t.Fatalf("missing name falls back to a generic greeting: %q", body)
	}
}

func TestSendTextEmailDisabled(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	err := svc.SendOrderStatusEmail("customer@example.com", OrderStatusEmailInput{OrderNo: "AT1", Status: constants.OrderStatusDelivered})
	if !errors.Is(err, ErrEmailDisabled) {
		t.Fatalf("expected email disabled error, got: %v", err)
	}

	svc = NewEmailService(&config.EmailConfig{Enabled: true})
	err = svc.SendOrderStatusEmail("customer@example.com", OrderStatusEmailInput{OrderNo: "AT1", Status: constants.OrderStatusDelivered})
	if !errors.Is(err, ErrEmailNotConfigured) {
		t.Fatalf("expected not-configured error, got: %v", err)
	}

	svc = NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"})
	err = svc.SendOrderStatusEmail("not-an-address", OrderStatusEmailInput{OrderNo: "AT1", Status: constants.OrderStatusDelivered})
	if !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email error, got: %v", err)
	}
}
