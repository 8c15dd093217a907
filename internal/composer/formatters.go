package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/avamarket/support-relay-go/internal/domain"

	"golang.org/x/sync/errgroup"
)

// The rendered blocks are in Russian, matching the store's audience and the
// scenario scripts in the catalog.

func formatBonusBalance(_ context.Context, c *Composer, userID string) (string, error) {
	data, err := c.loader.Loyalty(userID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(data.History))
	for _, h := range data.History {
		if h.Event != "" {
			lines = append(lines, fmt.Sprintf("%s: %s (%s)", h.Date, h.Event, h.Points))
			continue
		}
		sign := ""
		if h.Change > 0 {
			sign = "+"
		}
		products := ""
		if len(h.Products) > 0 {
			products = ": " + strings.Join(h.Products, ", ")
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s%d%s)", h.Date, h.Reason, sign, h.Change, products))
	}

	return fmt.Sprintf(
		"Данные пользователя:\n"+
			"- Бонусный баланс: %d\n"+
			"- Кэшбек: %d\n"+
			"- Уровень: %s\n"+
			"- Последнее обновление: %s\n"+
			"- История: \n%s\n\n%s",
		data.BonusBalance, data.CashbackAvailable, data.LoyaltyTier, data.LastUpdated,
		strings.Join(lines, "\n"), dataInstruction,
	), nil
}

func formatPromoCodes(_ context.Context, c *Composer, _ string) (string, error) {
	data, err := c.loader.PromoCodes()
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(data.PromoCodes))
	for _, p := range data.PromoCodes {
		lines = append(lines, fmt.Sprintf("%s: %s (скидка %d%%)", p.Code, p.Description, p.Discount))
	}
	return fmt.Sprintf("Актуальные промокоды:\n%s\n\n%s", strings.Join(lines, "\n"), dataInstruction), nil
}

func formatPersonalDiscounts(_ context.Context, c *Composer, userID string) (string, error) {
	data, err := c.loader.PersonalPromoCodes(userID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(data.PersonalPromoCodes))
	for _, p := range data.PersonalPromoCodes {
		val := fmt.Sprintf("%d₽", p.Value)
		if p.Type == "percent" {
			val = fmt.Sprintf("%d%%", p.Value)
		}
		min := ""
		if p.MinOrderAmount > 0 {
			min = fmt.Sprintf(", от %d₽", p.MinOrderAmount)
		}
		items := ""
		if len(p.AppliesTo) > 0 {
			items = ", товары: " + strings.Join(p.AppliesTo, ", ")
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s%s, до %s%s)", p.Code, p.Description, val, min, p.Expires, items))
	}
	return fmt.Sprintf("Персональные промокоды пользователя:\n%s\n\n%s", strings.Join(lines, "\n"), dataInstruction), nil
}

func formatOrderTracking(_ context.Context, c *Composer, userID string) (string, error) {
	data, err := c.loader.Orders(userID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Статусы заказов пользователя:\n%s\n\n%s", renderOrders(data.Orders), dataInstruction), nil
}

func renderOrders(orders []domain.Order) string {
	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		delivery := ""
		if o.DeliveryDate != "" {
			delivery = ", доставка " + o.DeliveryDate
		}
		lines = append(lines, fmt.Sprintf("%s: %s%s", o.ID, o.Status, delivery))
	}
	return strings.Join(lines, "\n")
}

func formatProductRecommendations(_ context.Context, c *Composer, userID string) (string, error) {
	data, err := c.loader.PurchaseHistory(userID)
	if err != nil {
		return "", err
	}

	purchased := make([]string, 0, len(data.Purchases))
	for _, p := range data.Purchases {
		purchased = append(purchased, fmt.Sprintf("%s: %s", p.Date, strings.Join(p.Items, ", ")))
	}

	listing := make([]string, 0, len(c.catalog.Products()))
	for _, p := range c.catalog.Products() {
		line := fmt.Sprintf("%s: %s, %d₽", p.Name, p.Category, p.Price)
		if p.Description != "" {
			line += " — " + p.Description
		}
		listing = append(listing, line)
	}

	return fmt.Sprintf(
		"Покупки пользователя:\n%s\n\nКаталог товаров:\n%s\n\n%s",
		strings.Join(purchased, "\n"), strings.Join(listing, "\n"), dataInstruction,
	), nil
}

func formatCartSuggestions(_ context.Context, c *Composer, userID string) (string, error) {
	data, err := c.loader.Cart(userID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(data.Items))
	for _, item := range data.Items {
		line := fmt.Sprintf("%s — %d шт. (%d₽)", item.Name, item.Quantity, item.Price)
		// Enrich from the product catalog when the name matches; a cart item
		// with no catalog entry is rendered as-is.
		if p, ok := c.catalog.ProductByName(item.Name); ok {
			line += ", категория: " + p.Category
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("Корзина пользователя:\n%s\n\n%s", strings.Join(lines, "\n"), dataInstruction), nil
}

func formatPromoNavigation(_ context.Context, c *Composer, _ string) (string, error) {
	data, err := c.loader.SiteSections()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Промо-страницы и разделы сайта:\n%s\n\n%s", renderSections(data.Sections), dataInstruction), nil
}

func formatContactInfo(_ context.Context, c *Composer, _ string) (string, error) {
	data, err := c.loader.Contacts()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Контакты магазина:\n%s\n\n%s", renderContacts(data), dataInstruction), nil
}

func renderContacts(data domain.ContactsRecord) string {
	return fmt.Sprintf(
		"- Телефон: %s\n"+
			"- Email: %s\n"+
			"- Адрес: %s\n"+
			"- Часы работы: %s",
		data.Phone, data.Email, data.Address, data.Hours,
	)
}

func formatFAQ(_ context.Context, c *Composer, _ string) (string, error) {
	data, err := c.loader.FAQ()
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(data.Questions))
	for _, q := range data.Questions {
		lines = append(lines, fmt.Sprintf("В: %s\nО: %s", q.Question, q.Answer))
	}
	return fmt.Sprintf("Частые вопросы:\n%s\n\n%s", strings.Join(lines, "\n"), dataInstruction), nil
}

func formatSiteNavigation(_ context.Context, c *Composer, _ string) (string, error) {
	data, err := c.loader.SiteSections()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Разделы сайта:\n%s\n\n%s", renderSections(data.Sections), dataInstruction), nil
}

func renderSections(sections []domain.SiteSection) string {
	lines := make([]string, 0, len(sections))
	for _, s := range sections {
		line := fmt.Sprintf("%s: %s", s.Title, s.URL)
		if s.Description != "" {
			line += " — " + s.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatNewsletters(_ context.Context, c *Composer, userID string) (string, error) {
	data, err := c.loader.Newsletters(userID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(data.Subscriptions))
	for _, n := range data.Subscriptions {
		status := "не подписан"
		if n.Subscribed {
			status = "подписан"
		}
		line := fmt.Sprintf("%s: %s", n.Name, status)
		if n.Frequency != "" {
			line += ", " + n.Frequency
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("Подписки пользователя на рассылки:\n%s\n\n%s", strings.Join(lines, "\n"), dataInstruction), nil
}

func formatPurchaseHistory(_ context.Context, c *Composer, userID string) (string, error) {
	data, err := c.loader.PurchaseHistory(userID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(data.Purchases))
	for _, p := range data.Purchases {
		lines = append(lines, fmt.Sprintf("%s: %s (итого %d₽)", p.Date, strings.Join(p.Items, ", "), p.Total))
	}
	return fmt.Sprintf("История покупок пользователя:\n%s\n\n%s", strings.Join(lines, "\n"), dataInstruction), nil
}

// formatProductReturns needs both the user's orders and the store contacts,
// loaded concurrently.
func formatProductReturns(ctx context.Context, c *Composer, userID string) (string, error) {
	var (
		orders   domain.OrderStatusRecord
		contacts domain.ContactsRecord
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = c.loader.Orders(userID)
		return err
	})
	g.Go(func() error {
		var err error
		contacts, err = c.loader.Contacts()
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Статусы заказов пользователя:\n%s\n\nКонтакты для оформления возврата:\n%s\n\n%s",
		renderOrders(orders.Orders), renderContacts(contacts), dataInstruction,
	), nil
}
