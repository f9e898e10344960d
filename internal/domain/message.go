package domain

import "fmt"

const (
	SubjectOrderConfirmation = "Order Confirmation"
	SubjectNewOrder          = "New Order Received"
)

// Message is a single plain-text email handed to the mail transport.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

func CustomerConfirmation(from string, order *Order) Message {
	return Message{
		From:    from,
		To:      order.Customer.Email,
		Subject: SubjectOrderConfirmation,
		Body:    fmt.Sprintf("Thank you for your order! Your order ID is %s.", order.ID),
	}
}

func DeveloperNotice(from, to, orderID string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: SubjectNewOrder,
		Body:    fmt.Sprintf("A new order (ID: %s) has been placed.", orderID),
	}
}
