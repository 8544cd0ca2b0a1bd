package enums

type NotificationType string

const (
	NotificationMatchFormed     NotificationType = "match_formed"
	NotificationReportSubmitted NotificationType = "report_submitted"
	NotificationReportReceived  NotificationType = "report_received"
	NotificationReportResolved  NotificationType = "report_resolved"
	NotificationReportDismissed NotificationType = "report_dismissed"
)
