package dao

const (
	// CollectionAccount 存储账号信息的表。
	CollectionAccount = "accounts"
	// CollectionAccountToken 存储已登录用户的表。
	CollectionAccountToken = "account_token"

	// CollectionMeeting 存储面试会议的表。
	CollectionMeeting = "meetings"

	// CollectionCode 每场会议一份的协同代码文档，_id即meetingId。
	CollectionCode = "codes"
)
