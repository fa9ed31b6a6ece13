package service

import (
	"fmt"

	"northberries/shop-service/internal/app/shop/entity"
)

// Тексты писем покупателю, выбираются по языку заказа
// Язык фиксируется при оформлении; незнакомый код падает в английский

func orderPlacedMail(languageCode, orderID string, total float64) (subject, html string) {
	switch languageCode {
	case "ru":
		return "Ваш заказ принят",
			fmt.Sprintf("<p>Заказ %s на сумму %.2f принят в обработку.</p>", orderID, total)
	default:
		return "Your order has been received",
			fmt.Sprintf("<p>Order %s for %.2f has been received and is being processed.</p>", orderID, total)
	}
}

func orderPaidMail(languageCode, orderID string, total float64) (subject, html string) {
	switch languageCode {
	case "ru":
		return "Оплата получена",
			fmt.Sprintf("<p>Оплата заказа %s на сумму %.2f подтверждена.</p>", orderID, total)
	default:
		return "Payment received",
			fmt.Sprintf("<p>Payment for order %s in the amount of %.2f has been confirmed.</p>", orderID, total)
	}
}

func orderStatusMail(languageCode, orderID string, status entity.OrderStatus) (subject, html string) {
	switch languageCode {
	case "ru":
		return "Статус заказа изменён",
			fmt.Sprintf("<p>Заказ %s: новый статус %s.</p>", orderID, status)
	default:
		return "Order status updated",
			fmt.Sprintf("<p>Order %s: new status %s.</p>", orderID, status)
	}
}
