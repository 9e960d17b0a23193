package discord

import "github.com/hunterjsb/clubscout/internal/club"

// describeError picks the user-facing title and text for err.
// unexpected is true for unclassified errors, which get a generic apology.
func describeError(err error) (title, description string, unexpected bool) {
	switch club.Classify(err) {
	case club.KindNoMatch:
		return "No Club Found", "No Pro Clubs team matched that name. Check the spelling or try a shorter search.", false
	case club.KindInvalidSelection:
		return "Selection Expired", "That selection is no longer valid. Please run /scout again.", false
	case club.KindInsufficientData:
		return "Not Enough Data", "Found the club, but there are no stats or match history for it yet.", false
	case club.KindUpstreamUnavailable:
		return "Report Service Unavailable", "The AI report service can't be reached right now. Please try again later.", false
	case club.KindQuotaExceeded:
		return "Report Limit Reached", "The AI report service is out of quota for now. Please try again later.", false
	case club.KindContextTooLarge:
		return "Too Much Data", "This club has more data than the AI can read at once. An admin can lower the report budgets.", false
	case club.KindEmptyResponse:
		return "Empty Report", "The AI returned an empty report. Please try again.", false
	default:
		return "Something Went Wrong", "Sorry, I couldn't process your request. Please try again later.", true
	}
}
