// Copyright 2025 Zintix Labs
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

package netsvr

import (
	"net/http"

	"github.com/zintix-labs/gausslab/server/app"
)

// NetSvr 路由加上啟停控制，只交給最外層組裝（server.Run / cmd/svr）。
// 它同時是 app.Component，可以直接交給 app.App 管理。
type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter gausslab API 需要的路由能力：middleware、GET、POST 與分組。
// 不含 Run/Shutdown；api 套件與 Group 回呼只拿得到這一層。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	// GetPost 同一個 handler 掛在 GET 與 POST（/v1/sample、/v1/sim 的 query 與 JSON 兩種入口）。
	GetPost(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
