package cloud

import (
	"github.com/qiniu/x/xlog"
	rcsdk "github.com/rongcloud/server-sdk-go/v3/sdk"

	"github.com/solutions/code-cube/internal/common/utils"
)

const (
	// DefaultPortraitURL 默认IM头像地址。
	DefaultPortraitURL = "https://developer.rongcloud.cn/static/images/newversion-logo.png"
)

// IMService 会议内聊天的用户token签发。
type IMService interface {
	GetUserToken(xl *xlog.Logger, userID, name string) (string, error)
}

// RongCloudIMService 融云IM控制器，按需开启（im.enabled）。
type RongCloudIMService struct {
	rongCloudClient *rcsdk.RongCloud
	xl              *xlog.Logger
}

func NewRongCloudIMService(conf utils.Config) *RongCloudIMService {
	c := &RongCloudIMService{
		rongCloudClient: rcsdk.NewRongCloud(conf.IM.RongCloud.AppKey, conf.IM.RongCloud.AppSecret),
		xl:              xlog.New("code-cube-im"),
	}
	return c
}

// GetUserToken 用户注册，生成IM user token。
func (c *RongCloudIMService) GetUserToken(xl *xlog.Logger, userID, name string) (string, error) {
	if xl == nil {
		xl = c.xl
	}
	if name == "" {
		name = userID
	}
	userRes, err := c.rongCloudClient.UserRegister(userID, name, DefaultPortraitURL)
	if err != nil {
		xl.Errorf("failed to get user token from rongcloud, error %v", err)
		return "", err
	}
	return userRes.Token, nil
}
