package quote

import (
	"fmt"
	"time"

	"equiline/go_backend/internal/domain/conversation"
)

// StandardTerms is attached to every generated quote.
const StandardTerms = `TERMS AND CONDITIONS:

1. PAYMENT TERMS
   - 30% deposit required upon quote acceptance
   - Balance due upon delivery

2. DELIVERY
   - Delivery time estimates are approximate and subject to change
   - Customer is responsible for site access and preparation

3. WARRANTY
   - Equipment covered by manufacturer's standard warranty

4. VALIDITY
   - This quote is valid for 30 days from issue date
   - Prices subject to change after expiration
   - Equipment availability subject to prior sale

For questions or concerns, please contact our sales team.`

// deliveryBaseDays maps urgency tier to the base delivery window.
var deliveryBaseDays = map[string]int{
	conversation.UrgencyUrgent: 7,
	conversation.UrgencyHigh:   14,
	conversation.UrgencyNormal: 21,
	conversation.UrgencyLow:    30,
}

// EstimateDelivery renders a human-readable delivery estimate from the
// urgency tier and total unit count. Each unit past the first adds 3 days.
func EstimateDelivery(urgency string, totalQuantity int, now time.Time) string {
	days, ok := deliveryBaseDays[urgency]
	if !ok {
		days = deliveryBaseDays[conversation.UrgencyNormal]
	}
	if totalQuantity > 1 {
		days += (totalQuantity - 1) * 3
	}
	by := now.AddDate(0, 0, days)
	return fmt.Sprintf("%d days (by %s)", days, by.Format("January 2, 2006"))
}
