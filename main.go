// @title StudyPoint 练习引擎 API
// @version 1.0
// @description 自适应练习：SmartScore 计分、选题与计时
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"github.com/Erkezh/studypoint-edu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("studypoint: %v", err)
	}
}
