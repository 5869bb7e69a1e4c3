package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

func TestLoad_DefaultsFromFile(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: test-secret-key-for-unit-testing\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Store.Driver != StoreDriverBolt {
		t.Errorf("期望默认 store.driver=bolt，实际=%s", cfg.Store.Driver)
	}
	if len(cfg.School.Grades) != 6 || cfg.School.Grades[0] != "1年" {
		t.Errorf("默认学年不符: %v", cfg.School.Grades)
	}
	if len(cfg.School.Classes) != 2 || cfg.School.Classes[1] != "ろ組" {
		t.Errorf("默认班级不符: %v", cfg.School.Classes)
	}
	if !cfg.Feature.DayScopedSubmissions {
		t.Error("期望默认开启按日记录")
	}
	if cfg.Auth.DefaultPassword != "teacher2026" {
		t.Errorf("期望默认密码 teacher2026，实际=%s", cfg.Auth.DefaultPassword)
	}
	if cfg.Export.TitleDelimiter != " / " {
		t.Errorf("期望默认分隔符 \" / \"，实际=%q", cfg.Export.TitleDelimiter)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: test-secret-key-for-unit-testing\nstore:\n  driver: bolt\n")
	t.Setenv("CLASSSYNC_STORE_DRIVER", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Store.Driver != StoreDriverMemory {
		t.Errorf("环境变量应覆盖配置文件，实际=%s", cfg.Store.Driver)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: short\n")
	if _, err := Load(path); err == nil {
		t.Error("过短的 jwt_secret 应校验失败")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: test-secret-key-for-unit-testing\nstore:\n  driver: etcd\n")
	if _, err := Load(path); err == nil {
		t.Error("未知 store.driver 应校验失败")
	}
}

func TestValidate_BadTimezone(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: test-secret-key-for-unit-testing\nschool:\n  timezone: Mars/Olympus\n")
	if _, err := Load(path); err == nil {
		t.Error("无效时区应校验失败")
	}
}

func TestSchoolConfig_Location(t *testing.T) {
	c := SchoolConfig{Timezone: "Asia/Tokyo"}
	if c.Location().String() != "Asia/Tokyo" {
		t.Errorf("期望 Asia/Tokyo，实际=%s", c.Location())
	}
}
