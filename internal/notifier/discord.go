package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/trekkingar/trekkingar-api/internal/models"
)

// DiscordNotifier posts reservation updates to the agency ops channel.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyReservation(user models.User, reservation models.Reservation, date models.TripDate) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	status := "updated"
	switch reservation.Status {
	case models.ReservationPending:
		status = "created (awaiting payment)"
	case models.ReservationConfirmed:
		status = "confirmed ✅"
	case models.ReservationCancelled:
		status = "cancelled 😢"
	case models.ReservationCompleted:
		status = "completed 🏔️"
	}

	message := fmt.Sprintf("🥾 **Reservation %s**\n**User:** %s (%s)\n**Trip:** %s\n**Dates:** %s - %s\n**Seats:** %d\n**Total:** $%.2f\n**Ref:** %s",
		status,
		user.Name,
		user.Email,
		date.Trip.Name,
		date.StartDate.Format("2006-01-02"),
		date.EndDate.Format("2006-01-02"),
		reservation.Quantity,
		float64(reservation.TotalPriceCents)/100,
		reservation.Reference,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
