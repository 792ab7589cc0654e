// Copyright 2020 Qiniu Cloud (qiniu.com)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package utils

import (
	"log"

	qconfig "github.com/qiniu/x/config"
)

var (
	DefaultConf Config
)

func InitConf(configFilePath string) {
	err := qconfig.LoadFile(&DefaultConf, configFilePath)
	if err != nil {
		log.Fatalf("failed to load config file, error %v", err)
	}
}

// MongoConfig mongo 数据库配置。
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// QiniuKeyPair 七牛API access key/secret key配置。
type QiniuKeyPair struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// QiniuRTCConfig 七牛RTC服务配置。
type QiniuRTCConfig struct {
	AppID string `json:"app_id"`
	// RTC room token的有效时间。
	RoomTokenExpireSecond int `json:"room_token_expire_s"`
}

// RongCloudIMConfig 融云IM服务配置。
type RongCloudIMConfig struct {
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
}

// IMConfig IM服务配置。
type IMConfig struct {
	Enabled bool `json:"enabled"`
	// SystemUserID 系统用户ID。该用户用于与会议用户通过IM传递控制消息。
	SystemUserID string             `json:"system_user_id"`
	RongCloud    *RongCloudIMConfig `json:"rongcloud"`
}

// RunnerConfig 外部代码执行服务配置。
type RunnerConfig struct {
	// Endpoint 执行服务地址，默认为公共piston实例。
	Endpoint string `json:"endpoint"`
}

// Config 后端配置。
type Config struct {
	// debug等级，为1时输出info/warn/error日志，为0除以上外还输出debug日志
	DebugLevel int    `json:"debug_level"`
	ListenAddr string `json:"listen_addr"`
	// 默认头像列表，用户新注册时随机从中选取一个作为初始头像。
	DefaultAvatars []string        `json:"default_avatars"`
	Mongo          *MongoConfig    `json:"mongo"`
	QiniuKeyPair   QiniuKeyPair    `json:"qiniu_key_pair"`
	RTC            *QiniuRTCConfig `json:"rtc"`
	IM             *IMConfig       `json:"im"`
	Runner         *RunnerConfig   `json:"runner"`
	JwtKey         string          `json:"jwt_key"`
}

// NewSample 返回样例配置。
func NewSample() *Config {
	return &Config{
		DebugLevel: 0,
		ListenAddr: ":8080",
		Mongo: &MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "code_cube_test",
		},
		RTC: &QiniuRTCConfig{
			RoomTokenExpireSecond: 60,
		},
		IM: &IMConfig{
			Enabled: false,
		},
		Runner: &RunnerConfig{
			Endpoint: "https://emkc.org/api/v2/piston/execute",
		},
	}
}
