package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/qs3c/crew_server/internal/model"
)

var registerOnce sync.Once

// RegisterValidators 注册 category、team_kind 校验规则，重复调用无副作用
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return model.Category(fl.Field().String()).Valid()
		})
		v.RegisterValidation("team_kind", func(fl validator.FieldLevel) bool {
			return model.TeamKind(fl.Field().String()).Valid()
		})
	})
}
