package cloud

import (
	"time"

	qiniuauth "github.com/qiniu/go-sdk/v7/auth"
	qiniurtc "github.com/qiniu/go-sdk/v7/rtc"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/code-cube/internal/common/utils"
)

// RTCService 会议音视频房间的token签发与在线查询。房间名即会议的
// streamCallId。
type RTCService struct {
	*qiniurtc.Manager
	conf   utils.QiniuRTCConfig
	signer *qiniuauth.Credentials
	xl     *xlog.Logger
}

const (
	SDKInvokeTimeout = time.Second * 5
	// DefaultRTCRoomTokenTimeout 默认的RTC加入房间用token的过期时间。
	DefaultRTCRoomTokenTimeout = 60 * time.Second
)

func NewRtcService(conf utils.Config) *RTCService {
	r := new(RTCService)
	if conf.RTC != nil {
		r.conf = *conf.RTC
	}
	r.xl = xlog.New("code-cube-rtc")
	r.signer = &qiniuauth.Credentials{
		AccessKey: conf.QiniuKeyPair.AccessKey,
		SecretKey: []byte(conf.QiniuKeyPair.SecretKey),
	}
	r.Manager = qiniurtc.NewManager(r.signer)
	return r
}

func (r *RTCService) ListUser(roomId string) (res []string, err error) {
	users, err := r.Manager.ListUser(r.conf.AppID, roomId)
	if err != nil {
		return nil, err
	}
	res = make([]string, 0, len(users))
	for _, u := range users {
		res = append(res, u.UserID)
	}
	return res, nil
}

// Online 用户是否在房间内。SDK无响应时按不在线处理。
func (r *RTCService) Online(roomId, userId string) bool {
	result := make(chan bool)
	go func() {
		users, err := r.ListUser(roomId)
		if err != nil {
			result <- false
			return
		}
		for _, id := range users {
			if id == userId {
				result <- true
				return
			}
		}
		result <- false
	}()
	select {
	case res := <-result:
		return res
	case <-time.After(SDKInvokeTimeout):
		r.xl.Infof("rtc list users timeout")
		return false
	}
}

func (r *RTCService) GenerateRTCRoomToken(roomId, userId, permission string) string {
	roomTimeOut := DefaultRTCRoomTokenTimeout
	if r.conf.RoomTokenExpireSecond > 0 {
		roomTimeOut = time.Duration(r.conf.RoomTokenExpireSecond) * time.Second
	}
	roomAccess := qiniurtc.RoomAccess{
		AppID:      r.conf.AppID,
		RoomName:   roomId,
		UserID:     userId,
		ExpireAt:   time.Now().Add(roomTimeOut).Unix(),
		Permission: permission,
	}
	token, _ := r.GetRoomToken(roomAccess)
	return token
}
